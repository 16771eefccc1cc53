package verifier

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"time"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
)

const (
	// artifactMountPath is where the verifier image expects its input.
	artifactMountPath = "/data/Task.lean"

	sandboxCPUs    = 2
	nanoCPUPerCPU  = 1_000_000_000
	sandboxMemory  = 8 * 1024 * 1024 * 1024
	destroyTimeout = 10 * time.Second
)

// Sandbox runs the verification image against a fetched artifact in an
// isolated container: no network, bounded CPU and memory, the artifact bind
// mounted read-only. Combined stdout/stderr is the raw result.
type Sandbox struct {
	client *dockerclient.Client
	image  string
}

func NewSandbox(image string) (*Sandbox, error) {
	client, err := dockerclient.NewClientWithOpts(
		dockerclient.FromEnv,
		dockerclient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, apoerrors.NewSandboxLaunch(image, err)
	}
	return &Sandbox{
		client: client,
		image:  image,
	}, nil
}

// Verify runs the image against one artifact and returns the combined
// output. Non-launchable conditions surface as SandboxLaunch errors, fatal
// to the enclosing task only.
func (s *Sandbox) Verify(ctx context.Context, artifactPath string) (string, error) {
	absPath, err := filepath.Abs(artifactPath)
	if err != nil {
		return "", errors.Wrap(err, "resolving artifact path")
	}

	if err := s.ensureImage(ctx); err != nil {
		return "", apoerrors.NewSandboxLaunch(s.image, err)
	}

	created, err := s.client.ContainerCreate(
		ctx,
		&container.Config{
			Image:           s.image,
			Tty:             false,
			NetworkDisabled: true,
		},
		&container.HostConfig{
			Mounts: []mount.Mount{
				{
					Type:     mount.TypeBind,
					Source:   absPath,
					Target:   artifactMountPath,
					ReadOnly: true,
				},
			},
			Resources: container.Resources{
				NanoCPUs: sandboxCPUs * nanoCPUPerCPU,
				Memory:   sandboxMemory,
			},
		},
		nil,
		nil,
		"",
	)
	if err != nil {
		return "", apoerrors.NewSandboxLaunch(s.image, err)
	}
	defer s.destroy(created.ID)

	log.Ctx(ctx).Info().
		Str("ContainerID", created.ID).
		Str("Image", s.image).
		Msg("starting sandboxed verification")

	if err := s.client.ContainerStart(ctx, created.ID, dockertypes.ContainerStartOptions{}); err != nil {
		return "", apoerrors.NewSandboxLaunch(s.image, err)
	}

	// even if the verification errors inside the container we want the
	// combined output, the classifier decides what it means
	var exitCode int64
	statusCh, errCh := s.client.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", errors.Wrap(err, "waiting on sandbox container")
	case exitStatus := <-statusCh:
		exitCode = exitStatus.StatusCode
		if exitStatus.Error != nil {
			log.Ctx(ctx).Warn().
				Str("Cause", exitStatus.Error.Message).
				Int64("ExitCode", exitCode).
				Msg("sandbox container returned status with error")
		}
	}

	raw, err := s.collectOutput(ctx, created.ID)
	if err != nil {
		return "", errors.Wrap(err, "collecting sandbox output")
	}

	log.Ctx(ctx).Info().
		Int64("ExitCode", exitCode).
		Msg("sandboxed verification ended")
	return raw, nil
}

func (s *Sandbox) ensureImage(ctx context.Context) error {
	_, _, err := s.client.ImageInspectWithRaw(ctx, s.image)
	if err == nil {
		return nil
	}
	if !dockerclient.IsErrNotFound(err) {
		return err
	}

	log.Ctx(ctx).Info().Str("Image", s.image).Msg("pulling verifier image")
	reader, err := s.client.ImagePull(ctx, s.image, dockertypes.ImagePullOptions{})
	if err != nil {
		return err
	}
	defer reader.Close()
	// drain the pull progress stream, the pull completes when it closes
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("Image", s.image).Msg("verifier image pulled")
	return nil
}

func (s *Sandbox) collectOutput(ctx context.Context, containerID string) (string, error) {
	reader, err := s.client.ContainerLogs(ctx, containerID, dockertypes.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var combined bytes.Buffer
	if _, err := stdcopy.StdCopy(&combined, &combined, reader); err != nil {
		return "", err
	}
	return combined.String(), nil
}

func (s *Sandbox) destroy(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), destroyTimeout)
	defer cancel()

	err := s.client.ContainerRemove(ctx, containerID, dockertypes.ContainerRemoveOptions{
		RemoveVolumes: true,
		Force:         true,
	})
	if err != nil {
		log.Warn().Err(err).Str("ContainerID", containerID).Msg("failed to remove sandbox container")
	}
}
