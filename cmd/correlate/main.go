package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/config"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/patient"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/services"
	"github.com/Ayash-Bera/nutri-agent/backend/pkg/utils"
	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
)

var (
	patientsPath = flag.String("patients", "", "Path to a patient-data JSON file (list of patient records)")
	requestPath  = flag.String("request", "", "Path to a query request JSON file (- for stdin)")
	resetStale   = flag.Bool("reset-stale", false, "Clear meal notes when a query finds no matching day or meal")
	classifyISO  = flag.Bool("classify-iso", false, "Classify ISO-only timestamps by their own clock")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := utils.NewLogger(level, "text", os.Stderr)

	if *patientsPath == "" || *requestPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(os.Stdout, logger); err != nil {
		logger.WithError(err).Error("Correlation failed")
		os.Exit(1)
	}
}

func run(out io.Writer, logger *logrus.Logger) error {
	var records []models.PatientRecord
	if err := readJSON(*patientsPath, &records); err != nil {
		return fmt.Errorf("read patients: %w", err)
	}

	var req models.QueryRequest
	if err := readJSON(*requestPath, &req); err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	cfg := &config.Config{}
	cfg.Correlation.ResetStaleNotes = *resetStale
	cfg.Correlation.ClassifyISOTimes = *classifyISO

	engine, err := services.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	response := models.CorrelateResponse{TicketID: req.TicketID()}

	chart, err := patient.FindDietChart(records, req.TicketID())
	if err != nil {
		logger.WithError(err).WithField("ticket_id", req.TicketID()).Warn("No diet chart")
	}

	results, errs := engine.Correlate(chart, req.LatestQuery, req.ChatHistory)
	response.DietPlanFound = chart != nil
	response.Correlations = results
	for _, e := range errs {
		response.SkippedEntries = append(response.SkippedEntries, e.Error())
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func readJSON(path string, dst interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, dst)
}
