package meshrecon

import (
	"errors"
	"fmt"

	"github.com/hupe1980/meshrecon/config"
	"github.com/hupe1980/meshrecon/reconstruction"
)

var (
	// ErrNilPointBuffer is returned when Reconstruct is called without input.
	ErrNilPointBuffer = errors.New("point buffer is nil")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyPointCloud is returned for point buffers without points.
	ErrEmptyPointCloud = reconstruction.ErrEmptyPointCloud
)

// ErrStageFailed indicates that a pipeline stage returned an error.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrStageFailed struct {
	Stage string
	cause error
}

func (e *ErrStageFailed) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.cause)
}

func (e *ErrStageFailed) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ve *config.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return err
}
