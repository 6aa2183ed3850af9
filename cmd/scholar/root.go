package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/validation"
	"github.com/lk2023060901/scholar-ai/internal/pkg/injector"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// DefaultTestQuestion test 和 full 命令未指定问题时使用
const DefaultTestQuestion = "What is the tuition at Harvard?"

type cli struct {
	configFile string
	verbose    bool

	config *conf.Config
	logger *logger.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "scholar",
		Short: "Scholar AI study abroad knowledge base",
		Long: "Build and query the university knowledge base: validate the environment, " +
			"chunk school JSON files, index them in Qdrant and ask questions.",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: c.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.full(cmd.Context(), cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Path to config file")
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging on the console")

	cmd.AddCommand(
		c.setupCommand(),
		c.processCommand(),
		c.testCommand(),
		c.fullCommand(),
		c.countryCommand(),
		c.statsCommand(),
	)
	return cmd
}

func (c *cli) load(_ *cobra.Command, _ []string) error {
	config, err := conf.LoadConfig(c.configFile)
	if err != nil {
		return err
	}

	logConfig := injector.LoggerConfig(config.Log)
	if c.verbose {
		logConfig = logger.DevelopmentConfig()
	}
	log, err := logger.New(logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)

	c.config = config
	c.logger = log
	return nil
}

// app 组装完整依赖，调用方负责 cleanup
func (c *cli) app() (*injector.App, func(), error) {
	if err := c.config.Validate(); err != nil {
		return nil, nil, err
	}
	return injector.InitializeApp(c.config, c.logger)
}

// validate 打印环境检查报告，不需要 OpenAI 凭据即可运行
func (c *cli) validate(ctx context.Context, cmd *cobra.Command) (*validation.Report, error) {
	return validation.Check(ctx, c.config, c.logger, cmd.OutOrStdout())
}
