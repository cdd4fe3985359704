package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Script runs an external prediction program with the car as a single JSON argument
// and reads {"success":..., "predicted_price":..., "confidence":...} from the last stdout line.
type Script struct {
	Interpreter string
	Path        string
	Timeout     time.Duration
}

type scriptResult struct {
	Success        *bool   `json:"success"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     string  `json:"confidence"`
	Error          string  `json:"error"`
}

func (s Script) Predict(ctx context.Context, in Input) (float64, string, error) {
	arg, err := json.Marshal(in)
	if err != nil {
		return 0, "", err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	name, args := s.Path, []string{string(arg)}
	if s.Interpreter != "" {
		name, args = s.Interpreter, []string{s.Path, string(arg)}
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, "", fmt.Errorf("run %s: %w (%s)", s.Path, err, strings.TrimSpace(stderr.String()))
	}

	return parseScriptOutput(stdout.String())
}

func parseScriptOutput(out string) (float64, string, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return 0, "", errors.New("empty script output")
	}

	var res scriptResult
	if err := json.Unmarshal([]byte(last), &res); err != nil {
		return 0, "", fmt.Errorf("decode script output: %w", err)
	}
	if res.Success != nil && !*res.Success {
		return 0, "", fmt.Errorf("script reported failure: %s", res.Error)
	}
	if res.PredictedPrice <= 0 {
		return 0, "", errors.New("script returned no price")
	}
	return res.PredictedPrice, res.Confidence, nil
}
