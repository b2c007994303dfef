package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/headhunter"
	"github.com/spigell/resume-screener/internal/inputs"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	PromptBreakdown  = "Show detailed skill match breakdown"
	PromptReportJSON = "Show report as JSON"
	PromptDumpReport = "Dump report to file"
	PromptExit       = "Exit"

	OutputText = "text"
	OutputJSON = "json"

	previewLength = 120
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptBreakdown, PromptReportJSON, PromptDumpReport, PromptExit},
}

type analyzeOptions struct {
	Resume      string
	JD          string
	JDFile      string
	Vacancy     string
	Output      string
	Interactive bool
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume against a job description",
	Example: `  resume-screener analyze --resume cv.pdf --jd-file job.txt
  resume-screener analyze --resume cv.docx --vacancy 12345678 --output json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAnalyze(cmd.Context(), cmd.OutOrStdout(), analyzeOpts)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOpts.Resume, "resume", "r", "", "resume file (pdf, docx, txt or md)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.JD, "jd", "", "job description text")
	analyzeCmd.Flags().StringVar(&analyzeOpts.JDFile, "jd-file", "", "plain text file with the job description")
	analyzeCmd.Flags().StringVar(&analyzeOpts.Vacancy, "vacancy", "", "hh.ru vacancy id to use as the job description")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Output, "output", "o", OutputText, "output format: text or json")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.Interactive, "interactive", "i", false, "open a menu after the report is printed")

	analyzeCmd.MarkFlagsMutuallyExclusive("jd", "jd-file", "vacancy")
}

func runAnalyze(ctx context.Context, out io.Writer, opts analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	log.Info("starting the analysis", zap.String("version", version))

	report, err := analyze(ctx, opts, config, log)
	if err != nil {
		return err
	}

	if err := writeReport(out, opts.Output, report); err != nil {
		return err
	}

	if !opts.Interactive {
		return nil
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}

		if err := handleAction(action, out, log, report); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// analyze resolves both inputs and runs a single screening.
func analyze(ctx context.Context, opts analyzeOptions, config *Config, log *zap.Logger) (*screening.Report, error) {
	switch opts.Output {
	case OutputText, OutputJSON:
	default:
		return nil, fmt.Errorf("unsupported output format %q (want %s or %s)", opts.Output, OutputText, OutputJSON)
	}

	resumeText, resumeSource, err := loadResume(opts.Resume, log)
	if err != nil {
		return nil, err
	}

	jobDescription, jobSource, err := loadJobDescription(ctx, opts, config, log)
	if err != nil {
		return nil, err
	}

	analyzer, err := buildAnalyzer(config, log)
	if err != nil {
		return nil, err
	}

	result := analyzer.Analyze(resumeText, jobDescription)
	report := screening.NewReport(result, resumeSource, jobSource)

	fields := append(logger.SourceFields(resumeSource, jobSource), logger.ResultFields(result)...)
	log.Info("analysis completed", append(fields, zap.String("report_id", report.ID.String()))...)

	return report, nil
}

func loadResume(path string, log *zap.Logger) (string, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", "", fmt.Errorf("resume is not provided (use --resume): %w", inputs.ErrEmpty)
	}

	text, err := extract.FromFile(path)
	if err != nil {
		return "", "", fmt.Errorf("extracting resume text: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		log.Warn("no text extracted from resume, scanned documents are not supported", zap.String("file", path))
	}

	return text, "file:" + path, nil
}

func loadJobDescription(ctx context.Context, opts analyzeOptions, config *Config, log *zap.Logger) (string, string, error) {
	if id := strings.TrimSpace(opts.Vacancy); id != "" {
		return loadVacancy(ctx, id, config.Headhunter, log)
	}

	src := inputs.Source{Name: "job description", Value: opts.JD, File: opts.JDFile}
	text, err := inputs.Load(src)
	if err != nil {
		return "", "", fmt.Errorf("%w (use --jd, --jd-file or --vacancy)", err)
	}

	log.Debug("job description loaded",
		zap.String(logger.FieldJobSource, src.Describe()),
		zap.String("preview", logger.TruncateForLog(text, previewLength)),
	)

	return text, src.Describe(), nil
}

func loadVacancy(ctx context.Context, id string, config *HeadhunterConfig, log *zap.Logger) (string, string, error) {
	var token string
	if config.TokenFile != "" {
		var err error
		token, err = inputs.Load(inputs.Source{Name: "headhunter token", File: config.TokenFile})
		if err != nil {
			return "", "", fmt.Errorf("loading headhunter token: %w", err)
		}
	}

	hh := headhunter.New(log, token)
	if config.APIURL != "" {
		hh.APIURL = config.APIURL
	}
	if config.UserAgent != "" {
		hh.UserAgent = config.UserAgent
	}

	vacancy, err := hh.GetVacancy(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("getting vacancy: %w", err)
	}

	if vacancy.Archived {
		log.Warn("vacancy is archived", zap.String("vacancy_id", vacancy.ID))
	}

	text, err := inputs.Load(inputs.Source{Name: "vacancy " + id, Value: vacancy.JobDescription()})
	if err != nil {
		return "", "", err
	}

	log.Debug("job description loaded from hh.ru",
		zap.String("vacancy_name", vacancy.Name),
		zap.Strings("key_skills", vacancy.KeySkillNames()),
		zap.String("preview", logger.TruncateForLog(text, previewLength)),
	)

	return text, vacancy.Source(), nil
}

func writeReport(out io.Writer, format string, report *screening.Report) error {
	if format == OutputJSON {
		return report.WriteJSON(out)
	}
	return screening.Render(out, report.Result)
}

func handleAction(action string, out io.Writer, log *zap.Logger, report *screening.Report) error {
	switch action {
	case PromptBreakdown:
		return screening.RenderBreakdown(out, report.Result)
	case PromptReportJSON:
		return report.WriteJSON(out)
	case PromptDumpReport:
		filename, err := report.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		log.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		log.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
