package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alf-academy/enroll/internal/auth"
	"github.com/alf-academy/enroll/internal/config"
	"github.com/alf-academy/enroll/internal/drafts"
	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/history"
	"github.com/alf-academy/enroll/internal/hooks"
	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/submission"
)

// services bundles everything a command needs to validate and submit.
type services struct {
	validator *enrollment.Validator
	client    *submission.Client
	drafts    *drafts.Store
	history   *history.Store
}

func newValidator(c *config.Config) (*enrollment.Validator, error) {
	loc, _ := enrollment.ResolveZone(c.TimeZone)
	return enrollment.NewValidator(enrollment.ValidatorOptions{
		Policy:   enrollment.Policy{OtherDetailsRequired: c.OtherDetailsMandatory()},
		Slots:    c.TimeSlots,
		Location: loc,
	})
}

func newForm(c *config.Config) *enrollment.Form {
	return enrollment.NewForm(enrollment.Defaults{
		Country:        c.DefaultCountry,
		ReferralPrefix: c.ReferralPrefix,
	})
}

// tokens prefers an explicit token and falls back to the saved login.
func tokens(c *config.Config) auth.TokenSource {
	var chain auth.Chain
	if c.AuthToken != "" {
		chain = append(chain, auth.Static(c.AuthToken))
	}
	return append(chain, auth.NewStore(c.DataDir))
}

// openServices wires the validator, client, drafts, submission hooks and,
// when withHistory is set, the event history. The history is best effort:
// if its store cannot be opened submissions still go out unrecorded.
func openServices(ctx context.Context, c *config.Config, withHistory bool) (*services, error) {
	v, err := newValidator(c)
	if err != nil {
		return nil, err
	}
	timeout, err := c.Timeout()
	if err != nil {
		return nil, err
	}

	s := &services{validator: v, drafts: drafts.NewStore(c.DataDir)}
	opts := submission.Options{
		Endpoint:   c.Endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
		Tokens:     tokens(c),
		Validator:  v,
		TimeZone:   c.TimeZone,
	}
	var recorders submission.Recorders
	if withHistory {
		h, err := history.Open(ctx, c.DataDir)
		if err != nil {
			logger.Warn("Submission history unavailable: %v", err)
		} else {
			s.history = h
			recorders = append(recorders, h)
		}
	}
	hookCfg, err := hooks.LoadConfig(".")
	if err != nil {
		s.Close()
		return nil, err
	}
	if runner := hooks.NewRunner(hookCfg, "."); runner != nil {
		recorders = append(recorders, runner)
	}
	if len(recorders) > 0 {
		opts.Recorder = recorders
	}

	s.client, err = submission.NewClient(opts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating submission client: %w", err)
	}
	return s, nil
}

func (s *services) Close() {
	if err := s.history.Close(); err != nil {
		logger.Warn("Closing history: %v", err)
	}
}
