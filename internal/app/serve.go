package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/procurehq/rfpflow/internal/api"
	"github.com/procurehq/rfpflow/internal/compare"
	"github.com/procurehq/rfpflow/internal/config"
	"github.com/procurehq/rfpflow/internal/db"
	"github.com/procurehq/rfpflow/internal/extract"
	"github.com/procurehq/rfpflow/internal/ingest"
	"github.com/procurehq/rfpflow/internal/jobs"
	"github.com/procurehq/rfpflow/internal/mailbox"
	"github.com/procurehq/rfpflow/internal/mailer"
	"github.com/procurehq/rfpflow/internal/pdftext"
	"github.com/procurehq/rfpflow/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the scheduled email check",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := config.Validate(); err != nil {
			return err
		}

		if err := db.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		vendors := store.NewVendorStore(db.Pool)
		rfps := store.NewRFPStore(db.Pool)
		proposals := store.NewProposalStore(db.Pool)
		jobHistory := store.NewJobHistoryStore(db.Pool)
		comparisons := store.NewComparisonStore(db.Pool)

		llm := extract.NewClient(config.LoadGemini())
		parser := &extract.Service{
			Proposals: proposals,
			LLM:       llm,
			PDF:       pdftext.Extractor{},
		}

		pipeline := &ingest.Pipeline{
			Vendors:   vendors,
			RFPs:      rfps,
			Proposals: proposals,
			Extractor: parser,
			Factory:   &mailbox.DialFactory{},
			IMAP:      config.LoadIMAP(),
		}
		runner := &jobs.Runner{
			Guard:   ingest.NewGuard(),
			Checker: pipeline,
			History: jobHistory,
		}

		scheduler, err := jobs.NewScheduler(runner, viper.GetString("schedule"))
		if err != nil {
			return fmt.Errorf("invalid schedule: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		comparer := &compare.Service{
			RFPs:        rfps,
			Proposals:   proposals,
			Vendors:     vendors,
			Comparisons: comparisons,
			LLM:         llm,
		}

		server := &api.Server{
			RFPs:      rfps,
			Vendors:   vendors,
			Proposals: proposals,
			Parser:    parser,
			Comparer:  comparer,
			Checker:   runner,
			History:   jobHistory,
			Extractor: llm,
			Mailer:    mailer.New(config.LoadSMTP()),
		}

		httpServer := &http.Server{
			Addr:    ":" + viper.GetString("server.port"),
			Handler: server.Router(),
		}

		errChan := make(chan error, 1)
		go func() {
			log.WithField("addr", httpServer.Addr).Info("starting HTTP server")
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
				return
			}
			errChan <- nil
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigChan:
			log.Info("shutting down")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("HTTP server did not stop cleanly")
			}
			return <-errChan
		case err := <-errChan:
			return err
		}
	},
}
