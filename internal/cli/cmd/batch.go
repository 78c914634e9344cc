package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"artassist/internal/cli"
	"artassist/internal/imageio"
	"artassist/internal/logging"
	"artassist/internal/model"
	"artassist/internal/pipeline"
	"artassist/internal/poll"
	"artassist/internal/progress"
	"artassist/internal/prompt"
	"artassist/internal/util/format"
)

const interruptTimeout = 5 * time.Second

// runBatch is the headless batch path shared by cleanup and facefix: run one
// batch to completion, streaming progress lines to stderr and result lines
// to stdout.
func runBatch(cmd *cobra.Command, task model.Task, imagePath string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logging.Setup(settings.Verbose, os.Stderr)

	req, err := cli.BatchRequest(cmd.Flags(), task, imagePath)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	client := newAPIClient(settings)
	state := progress.NewBatchState(settings.Progress.NoiseThreshold)

	var translator prompt.Translator
	if settings.Prompt.Translate {
		translator = prompt.NewGoogleTranslator(settings.Prompt.HintLanguage)
	}

	svc := pipeline.NewService(
		pipeline.WithAPI(client),
		pipeline.WithBatchState(state),
		pipeline.WithPromptBuilder(prompt.NewBuilder(translator)),
		pipeline.WithStore(imageio.NewStore(settings.Output.Dir)),
		pipeline.WithGeneration(settings.Generation),
		pipeline.WithModelKeyword(settings.Model.Keyword),
	)

	ctx := cmd.Context()

	// Ctrl+C cancels in two tiers: the flag stops the batch at the next
	// image boundary, the interrupt call aborts the in-flight job.
	go func() {
		<-ctx.Done()
		svc.Cancel().Request()
		ictx, cancel := context.WithTimeout(context.Background(), interruptTimeout)
		defer cancel()
		_ = client.Interrupt(ictx)
	}()

	pollCtx, stopPoll := context.WithCancel(context.Background())
	defer stopPoll()
	poller := poll.New(client, state, settings.Progress.FirstPollGuard)
	go poller.Run(pollCtx, settings.Progress.PollInterval, func(d poll.Display) {
		if d.Active {
			fmt.Fprintf(os.Stderr, "%s\n", color.CyanString(d.Label))
		}
	})

	res, runErr := svc.Run(ctx, req)
	stopPoll()

	for _, img := range res.Images {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
			color.GreenString("Saved:"), img.Path, format.HumanizeBytes(img.Bytes))
	}
	if res.Cancelled {
		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("Cancelled: kept %d image(s)", len(res.Images)))
	}
	if runErr != nil {
		return exitFor(runErr)
	}
	return nil
}
