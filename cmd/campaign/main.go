package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/ledger"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/dncstore"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/ledger"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/provider"
	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
	campaignsvc "github.com/davidleathers/voice-outreach-backend/internal/service/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/service/compliance"
	"github.com/davidleathers/voice-outreach-backend/internal/service/dispatch"
	"github.com/davidleathers/voice-outreach-backend/internal/service/statussync"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to configuration file")
		contactsPath = flag.String("contacts", "", "Contacts CSV (overrides ledger path from config)")
		scriptPath   = flag.String("script", "", "Call script template file")
		dryRun       = flag.Bool("dry-run", false, "Evaluate the campaign without placing calls")
		skipNumbers  = flag.String("skip", "", "Comma-separated numbers to suppress for this run")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	registry, err := metrics.NewRegistry("vob-campaign")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	path := cfg.Ledger.Path
	if *contactsPath != "" {
		path = *contactsPath
	}
	contactLedger, err := ledger.OpenCSV(path, zapLogger)
	if err != nil {
		log.Fatalf("Failed to open contact ledger: %v", err)
	}
	contacts, err := contactLedger.Contacts()
	if err != nil {
		log.Fatalf("Failed to load contacts: %v", err)
	}
	if len(contacts) == 0 {
		log.Println("No contacts to call")
		return
	}

	script := "Hello {name}, this is an automated call from our team."
	if *scriptPath != "" {
		raw, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatalf("Failed to read script: %v", err)
		}
		script = string(raw)
	}

	dncStore, err := dncstore.Open(cfg, registry, zapLogger)
	if err != nil {
		log.Fatalf("Failed to open do-not-call store: %v", err)
	}

	gate := compliance.NewGate(cfg.Compliance, dncStore, zapLogger)
	providerClient := provider.NewClient(cfg.Provider, zapLogger)
	dispatcher := dispatch.NewDispatcher(gate, providerClient, cfg.Provider, registry, zapLogger)
	orchestrator := campaignsvc.NewOrchestrator(dispatcher, zapLogger)
	sync := statussync.NewSynchronizer(contactLedger, zapLogger)

	var extraDNC []string
	if *skipNumbers != "" {
		extraDNC = strings.Split(*skipNumbers, ",")
	}

	summary, results := orchestrator.Run(ctx, contacts, campaignsvc.Options{
		CampaignID:  uuid.New(),
		ScriptFor:   func(c contact.Contact) string { return renderScript(script, c) },
		DryRun:      *dryRun,
		PacingDelay: cfg.Campaign.PacingDelay,
		ExtraDNC:    extraDNC,
	})

	for _, r := range results {
		recordResult(ctx, sync, r)
	}

	fmt.Println(summary.String())
}

// renderScript substitutes the contact placeholders the script supports.
func renderScript(template string, c contact.Contact) string {
	r := strings.NewReplacer(
		"{name}", c.DisplayName,
		"{company}", c.Company,
		"{phone}", c.PhoneNumber.String(),
	)
	return r.Replace(template)
}

// recordResult writes the per-contact outcome back to the ledger. A contact
// missing from the ledger or a write failure is logged and skipped; one bad
// row must not lose the rest of the run.
func recordResult(ctx context.Context, sync *statussync.Synchronizer, r campaign.CallResult) {
	status := "called"
	notes := fmt.Sprintf("call submitted %s (id %s)",
		time.Now().UTC().Format(time.RFC3339), r.ProviderCallID)
	switch r.Kind {
	case campaign.ResultRejected:
		status = "skipped"
		notes = fmt.Sprintf("skipped: %s", r.Reason)
	case campaign.ResultProviderError:
		status = "failed"
		notes = fmt.Sprintf("provider error: %s", r.Message)
	}

	matched, err := sync.Update(ctx, statussync.Request{
		Email:   r.Contact.Email.String(),
		Phone:   r.Contact.PhoneNumber.String(),
		Channel: domain.ChannelVoice,
		Status:  status,
		Notes:   notes,
	})
	if err != nil {
		log.Printf("Failed to record result for %s: %v", r.Contact.DisplayName, err)
		return
	}
	if !matched {
		log.Printf("Contact %s not found in ledger, result not recorded", r.Contact.DisplayName)
	}
}
