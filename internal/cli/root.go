package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/internal/config"
	"github.com/nerdneilsfield/go-translatex/internal/logger"
	"github.com/nerdneilsfield/go-translatex/internal/pipeline"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/cache"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/dictionary"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/factory"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/stats"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// options 命令行标志
type options struct {
	configPath     string
	source         string
	target         string
	service        string
	stopAt         string
	dryRun         bool
	debug          bool
	markerFormat   string
	tokenFormat    string
	tokenSublimit  int
	concurrency    int
	dictionary     string
	encoding       string
	noSubstitution bool
	listServices   bool
	progress       bool
	cacheDir       string
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "translatex [flags] [input] [output]",
		Short: "Translate LaTeX documents while keeping their markup intact",
		Long: `translatex hides LaTeX markup behind short tokens, sends only the
prose to a machine translation service and puts the markup back.

Input "-" or no input reads stdin; output "-" or no output writes stdout.
Manual replacement blocks (%@{ ... %@-- ... %@}) replace a passage with
a hand written translation.

Run with --list-services to see the available services.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	addFlags(rootCmd, opts)
	return rootCmd
}

func addFlags(cmd *cobra.Command, opts *options) {
	d := config.NewDefaultConfig()
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default $HOME/.translatex.yaml or ./.translatex.yaml)")
	f.StringVarP(&opts.source, "source", "s", d.SourceLang, "source language")
	f.StringVarP(&opts.target, "target", "t", d.TargetLang, "target language")
	f.StringVar(&opts.service, "service", d.Service, "translation service")
	f.StringVar(&opts.stopAt, "stop-at", "", "stop after this stage and write its intermediate form (preprocessor, marker, tokenizer, translator)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "run every stage without translating")
	f.BoolVar(&opts.debug, "debug", false, "debug logging, write intermediate files next to the output")
	f.StringVar(&opts.markerFormat, "marker-format", d.MarkerFormat, "marker template with one {}")
	f.StringVar(&opts.tokenFormat, "token-format", d.TokenFormat, "token template with two {}")
	f.IntVar(&opts.tokenSublimit, "token-sublimit", d.TokenSublimit, "upper bound of the minor token number")
	f.IntVar(&opts.concurrency, "concurrency", d.Concurrency, "parallel translation requests")
	f.StringVar(&opts.dictionary, "dictionary", "", "TOML dictionary file, implies --service dictionary")
	f.StringVar(&opts.encoding, "encoding", d.Encoding, "charset of the input and output files")
	f.BoolVar(&opts.noSubstitution, "no-substitution", false, "keep manual replacement blocks as written")
	f.BoolVar(&opts.listServices, "list-services", false, "list the translation services and exit")
	f.BoolVar(&opts.progress, "progress", false, "show a progress bar while translating")
	f.StringVar(&opts.cacheDir, "cache-dir", "", "keep translated chunks in this directory and reuse them")
}

// applyFlags 用显式给出的标志覆盖配置
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) {
	f := cmd.Flags()
	if f.Changed("source") {
		cfg.SourceLang = opts.source
	}
	if f.Changed("target") {
		cfg.TargetLang = opts.target
	}
	if f.Changed("service") {
		cfg.Service = opts.service
	}
	if f.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if f.Changed("marker-format") {
		cfg.MarkerFormat = opts.markerFormat
	}
	if f.Changed("token-format") {
		cfg.TokenFormat = opts.tokenFormat
	}
	if f.Changed("token-sublimit") {
		cfg.TokenSublimit = opts.tokenSublimit
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if f.Changed("encoding") {
		cfg.Encoding = opts.encoding
	}
	if f.Changed("cache-dir") {
		cfg.CacheDir = opts.cacheDir
	}
	if f.Changed("dictionary") {
		cfg.Dictionary = opts.dictionary
		if !f.Changed("service") {
			cfg.Service = dictionary.Name
		}
	}
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug)
	defer func() {
		_ = log.Sync()
	}()

	registry := factory.NewRegistry()
	if opts.listServices {
		renderServices(cmd.OutOrStdout(), registry.Entries(), cfg.Service)
		return nil
	}

	stopAt, err := pipeline.ParseStage(opts.stopAt)
	if err != nil {
		return err
	}

	// 服务在读取输入之前创建，配置错误不会浪费任何处理
	var svc providers.Service
	if !opts.dryRun {
		if svc, err = buildService(registry, cfg, log); err != nil {
			return err
		}
	}

	input, output := arg(args, 0), arg(args, 1)
	text, err := readInput(input, cmd.InOrStdin(), cfg.Encoding)
	if err != nil {
		return err
	}

	manager := stats.NewManager()
	popts := pipeline.Options{
		Source:         cfg.SourceLang,
		Target:         cfg.TargetLang,
		Service:        svc,
		DryRun:         opts.dryRun,
		MarkerFormat:   cfg.MarkerFormat,
		TokenFormat:    cfg.TokenFormat,
		TokenSublimit:  cfg.TokenSublimit,
		Concurrency:    cfg.Concurrency,
		StopAt:         stopAt,
		NoSubstitution: opts.noSubstitution,
		Stats:          manager,
		Logger:         log,
	}
	if cfg.CacheDir != "" && !opts.dryRun {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			return err
		}
		popts.Cache = store
		popts.CacheScope = cfg.CacheScope(cfg.Service)
	}
	if opts.progress {
		bar := newChunkProgress(cmd.ErrOrStderr())
		defer bar.Stop()
		popts.Progress = bar.Update
	}

	res, err := pipeline.Run(cmd.Context(), text, popts)
	if err != nil {
		return err
	}
	if err := writeOutput(output, cmd.OutOrStdout(), res.Output, cfg.Encoding); err != nil {
		return err
	}

	if cfg.Debug {
		files, err := writeDebug(debugBase(input, output), res)
		if err != nil {
			return err
		}
		log.Debug("intermediate files written", zap.Strings("files", files))
	}

	if !isStdio(output) {
		printSummary(cmd.ErrOrStderr(), res)
	}
	return nil
}

// buildService 创建配置的服务，未知名称时给出相近的候选
func buildService(registry *providers.Registry, cfg *config.Config, log *zap.Logger) (providers.Service, error) {
	if _, err := registry.Get(cfg.Service); err != nil {
		if hints := registry.Suggest(cfg.Service); len(hints) > 0 {
			return nil, fmt.Errorf("%w, did you mean: %s?", err, strings.Join(hints, ", "))
		}
		return nil, fmt.Errorf("%w, run with --list-services", err)
	}
	return registry.Build(cfg.Service, cfg.ServiceConfig(cfg.Service), log)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return stdio
}

// PrintError 以颜色输出错误，缺少凭据时提示环境变量
func PrintError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	warnColor.Fprintf(w, "Error: ")
	fmt.Fprintln(w, err)
	if errors.Is(err, translation.ErrMissingCredential) {
		hintColor.Fprintln(w, "Set the variable named above, or api_key under services.<name> in the config file.")
	}
}
