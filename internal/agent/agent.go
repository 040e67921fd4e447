// Package agent drives a sandbox from a language model. Each turn the model
// sees the task, the visible tree and the results of its previous commands,
// and replies with new command lines. The loop ends when the model proposes
// nothing, the turn limit is hit or the context is canceled.
package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/command"
	"github.com/mfateev/dirproto/internal/history"
	"github.com/mfateev/dirproto/internal/instructions"
	"github.com/mfateev/dirproto/internal/llm"
)

// Source is the journal source recorded for commands the agent runs.
const Source = "agent"

// Sandbox is the part of the engine the agent uses.
type Sandbox interface {
	Root() string
	ManifestName() string
	Display(maxPreviewLines int) iter.Seq[string]
	ExecuteAll(ctx context.Context, lines []string) []command.Result
}

// RetryPolicy controls retries of retryable provider errors.
type RetryPolicy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	MaximumAttempts    int
}

// DefaultRetryPolicy returns the policy used when Config.Retry is zero.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    30 * time.Second,
		MaximumAttempts:    3,
	}
}

// Config configures an Agent.
type Config struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	MaxTurns     int
	PreviewLines int

	// BaseInstructions overrides the built-in system prompt.
	BaseInstructions string
	// PersonalInstructions is appended to the system prompt.
	PersonalInstructions string

	// DryRun stops after the first proposal without executing it.
	DryRun bool

	Retry RetryPolicy
}

const (
	defaultMaxTurns     = 8
	defaultPreviewLines = 5
)

// Turn is one model round trip.
type Turn struct {
	Reply    string
	Commands []string
	Results  []command.Result
	Usage    llm.Response
}

// Report summarizes a run.
type Report struct {
	Turns []Turn
	// Finished is true when the model stopped proposing commands.
	Finished bool
}

// Failed counts commands that did not succeed across all turns.
func (r Report) Failed() int {
	n := 0
	for _, t := range r.Turns {
		for _, res := range t.Results {
			if !res.OK {
				n++
			}
		}
	}
	return n
}

// Agent runs the propose and execute loop.
type Agent struct {
	client llm.Client
	sb     Sandbox
	cfg    Config
	log    logrus.FieldLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates an Agent. A nil log discards output.
func New(client llm.Client, sb Sandbox, cfg Config, log logrus.FieldLogger) *Agent {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.PreviewLines == 0 {
		cfg.PreviewLines = defaultPreviewLines
	}
	if cfg.Retry.MaximumAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Agent{client: client, sb: sb, cfg: cfg, log: log, sleep: sleepCtx}
}

// Run works on task until the model is done. Provider errors that survive
// the retry policy end the run; the report holds the turns completed so far.
func (a *Agent) Run(ctx context.Context, task string) (Report, error) {
	ctx = history.WithSource(ctx, Source)
	var (
		report   Report
		feedback []string
	)
	for i := 0; i < a.cfg.MaxTurns; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		log := a.log.WithField("turn", i+1)

		resp, err := a.complete(ctx, a.request(task, feedback))
		if err != nil {
			return report, fmt.Errorf("turn %d: %w", i+1, err)
		}
		turn := Turn{Reply: resp.Text, Commands: ExtractCommands(resp.Text), Usage: resp}
		log.WithFields(logrus.Fields{
			"commands":      len(turn.Commands),
			"input_tokens":  resp.InputTokens,
			"output_tokens": resp.OutputTokens,
		}).Info("model replied")

		if len(turn.Commands) == 0 {
			report.Turns = append(report.Turns, turn)
			report.Finished = true
			return report, nil
		}
		if a.cfg.DryRun {
			report.Turns = append(report.Turns, turn)
			return report, nil
		}

		turn.Results = a.sb.ExecuteAll(ctx, turn.Commands)
		report.Turns = append(report.Turns, turn)

		feedback = feedback[:0]
		for _, res := range turn.Results {
			feedback = append(feedback, fmt.Sprintf("%s => %s", res.Command, res.String()))
			if !res.OK {
				log.WithFields(logrus.Fields{"command": res.Command, "kind": res.Label()}).Warn("command failed")
			}
		}
	}
	return report, nil
}

func (a *Agent) request(task string, feedback []string) llm.Request {
	tree := slices.Collect(a.sb.Display(a.cfg.PreviewLines))
	merged := instructions.MergeInstructions(instructions.MergeInput{
		BaseOverride:         a.cfg.BaseInstructions,
		PersonalInstructions: a.cfg.PersonalInstructions,
		Task:                 task,
		SandboxContext:       instructions.BuildSandboxContext(filepath.Base(a.sb.Root()), a.sb.ManifestName(), tree),
		Feedback:             feedback,
	})
	return llm.Request{
		Instructions: merged.System,
		Prompt:       merged.User,
		Model:        a.cfg.Model,
		MaxTokens:    a.cfg.MaxTokens,
		Temperature:  a.cfg.Temperature,
	}
}

func (a *Agent) complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	policy := a.cfg.Retry
	interval := policy.InitialInterval
	var err error
	for attempt := 1; ; attempt++ {
		var resp llm.Response
		resp, err = a.client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		var llmErr *llm.Error
		if !errors.As(err, &llmErr) || !llmErr.Retryable || attempt >= policy.MaximumAttempts {
			return llm.Response{}, err
		}
		a.log.WithError(err).WithField("attempt", attempt).Warn("retrying model call")
		if serr := a.sleep(ctx, interval); serr != nil {
			return llm.Response{}, serr
		}
		interval = time.Duration(float64(interval) * policy.BackoffCoefficient)
		if policy.MaximumInterval > 0 && interval > policy.MaximumInterval {
			interval = policy.MaximumInterval
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
