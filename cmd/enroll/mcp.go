package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/mcpserver"
)

var mcpFlags struct {
	addr  string
	stdio bool
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve enrollment tools over MCP",
	Long: `Serve the enrollment tools to MCP clients (coding agents, assistants).

Tools:
  enrollment-options    option lists, time slots and the step/field table
  validate-enrollment   validate a set of fields step by step
  submit-enrollment     validate and submit (or dry-run) an enrollment

By default the tools are served as streamable HTTP at /mcp on --addr.
Use --stdio to serve on stdin/stdout instead.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "127.0.0.1:8765", "Listen address for streamable HTTP")
	mcpCmd.Flags().BoolVar(&mcpFlags.stdio, "stdio", false, "Serve on stdin/stdout")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openServices(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := mcpserver.New(mcpserver.Deps{
		Validator: svc.validator,
		NewForm:   func() *enrollment.Form { return newForm(cfg) },
		Client:    svc.client,
		Drafts:    svc.drafts,
	}, version)
	if err != nil {
		return err
	}

	if mcpFlags.stdio {
		return srv.ServeStdio()
	}

	if err := srv.Start(ctx, mcpFlags.addr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving enrollment tools at %s (ctrl+c to stop)\n", srv.URL())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
