package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/finantah/credit-simulator/internal/config"
	"github.com/finantah/credit-simulator/internal/logging"
	"github.com/finantah/credit-simulator/internal/optimizer"
	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/output"
	"github.com/finantah/credit-simulator/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	policy, err := conf.Policy.ToPolicy()
	if err != nil {
		logger.Fatal("failed to build credit policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	evaluator, err := simulator.NewDeterministic(policy, logger)
	if err != nil {
		logger.Fatal("failed to build evaluator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	reports, err := simulator.Simulate(context.Background(), logger, *conf, evaluator)
	if err != nil {
		logger.Fatal("failed to evaluate scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	runner, err := optimizer.NewRunner(logger, policy)
	if err != nil {
		logger.Fatal("failed to build optimizer",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	optimized, err := runner.Run(*conf)
	if err != nil {
		logger.Fatal("failed to run optimizer",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	optimized.Apply(reports)

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(reports, policy)
	case constants.OutputFormatCSV:
		output.CsvFormat(reports, policy)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(reports, policy); err != nil {
			logger.Fatal("failed to write output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
