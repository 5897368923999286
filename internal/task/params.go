package task

import (
	"errors"
	"fmt"
)

// Defaults used by the processing service when a field is omitted.
const (
	DefaultGuidanceScale    = 7.5
	DefaultInferenceSteps   = 50
	DefaultOutpaintStrength = 1.0
	DefaultInpaintStrength  = 0.8
	DefaultPercentage       = 25
	DefaultSuperResScale    = 4
	DefaultSuperResModel    = "realesrgan"
	DefaultDenoiseStrength  = 0.5
)

// SuperResModels lists the upscaling models the service advertises.
var SuperResModels = []string{"esrgan", "realesrgan", "swinir"}

// OutpaintParams is the params object of an outpainting request. Pixels is
// derived from Direction, Percentage and the source dimensions.
type OutpaintParams struct {
	Direction         Direction `json:"direction"`
	Pixels            Pixels    `json:"pixels"`
	Percentage        int       `json:"percentage"`
	Prompt            string    `json:"prompt"`
	NegativePrompt    string    `json:"negative_prompt"`
	GuidanceScale     float64   `json:"guidance_scale"`
	NumInferenceSteps int       `json:"num_inference_steps"`
	Strength          float64   `json:"strength"`
}

// DefaultOutpaintParams extends all sides by DefaultPercentage.
func DefaultOutpaintParams() OutpaintParams {
	return OutpaintParams{
		Direction:         AllSides,
		Percentage:        DefaultPercentage,
		GuidanceScale:     DefaultGuidanceScale,
		NumInferenceSteps: DefaultInferenceSteps,
		Strength:          DefaultOutpaintStrength,
	}
}

func (p OutpaintParams) Task() Task { return Outpainting }

// Validate rejects a zero percentage with ErrZeroPercentage.
func (p OutpaintParams) Validate() error {
	if _, err := ParseDirection(string(p.Direction)); err != nil {
		return err
	}
	if p.Percentage == 0 {
		return ErrZeroPercentage
	}
	if p.Percentage < 0 || p.Percentage > 100 {
		return fmt.Errorf("percentage must be between 0 and 100, got %d", p.Percentage)
	}
	if p.Pixels.Left < 0 || p.Pixels.Right < 0 || p.Pixels.Top < 0 || p.Pixels.Bottom < 0 {
		return errors.New("pixel counts must not be negative")
	}
	return validateDiffusion(p.GuidanceScale, p.NumInferenceSteps, p.Strength)
}

// WithPixels returns a copy of p with Pixels computed for a source of the
// given size.
func (p OutpaintParams) WithPixels(width, height int) OutpaintParams {
	p.Pixels = CalculatePixels(p.Direction, p.Percentage, width, height)
	return p
}

// InpaintParams is the params object of an inpainting request.
type InpaintParams struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	Strength          float64 `json:"strength"`
}

// DefaultInpaintParams returns the service defaults.
func DefaultInpaintParams() InpaintParams {
	return InpaintParams{
		GuidanceScale:     DefaultGuidanceScale,
		NumInferenceSteps: DefaultInferenceSteps,
		Strength:          DefaultInpaintStrength,
	}
}

func (p InpaintParams) Task() Task { return Inpainting }

func (p InpaintParams) Validate() error {
	return validateDiffusion(p.GuidanceScale, p.NumInferenceSteps, p.Strength)
}

// SuperResParams is the params object of a superresolution request.
type SuperResParams struct {
	Scale           int     `json:"scale"`
	Model           string  `json:"model"`
	DenoiseStrength float64 `json:"denoise_strength"`
}

// DefaultSuperResParams returns the service defaults.
func DefaultSuperResParams() SuperResParams {
	return SuperResParams{
		Scale:           DefaultSuperResScale,
		Model:           DefaultSuperResModel,
		DenoiseStrength: DefaultDenoiseStrength,
	}
}

func (p SuperResParams) Task() Task { return SuperResolution }

func (p SuperResParams) Validate() error {
	if p.Scale < 1 {
		return fmt.Errorf("scale must be at least 1, got %d", p.Scale)
	}
	if p.Model == "" {
		return errors.New("model is required")
	}
	if p.DenoiseStrength < 0 || p.DenoiseStrength > 1 {
		return fmt.Errorf("denoise_strength must be between 0 and 1, got %v", p.DenoiseStrength)
	}
	return nil
}

func validateDiffusion(guidance float64, steps int, strength float64) error {
	if guidance < 0 {
		return fmt.Errorf("guidance_scale must not be negative, got %v", guidance)
	}
	if steps < 1 {
		return fmt.Errorf("num_inference_steps must be at least 1, got %d", steps)
	}
	if strength < 0 || strength > 1 {
		return fmt.Errorf("strength must be between 0 and 1, got %v", strength)
	}
	return nil
}
