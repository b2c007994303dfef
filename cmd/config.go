package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/server"
	"github.com/spigell/resume-screener/internal/similarity"
	"github.com/spigell/resume-screener/internal/skills"
)

type Config struct {
	Screening  *ScreeningConfig  `mapstructure:"screening"`
	Skills     *SkillsConfig     `mapstructure:"skills"`
	Similarity *SimilarityConfig `mapstructure:"similarity"`
	Server     *ServerConfig     `mapstructure:"server"`
	Headhunter *HeadhunterConfig `mapstructure:"headhunter"`
}

type ScreeningConfig struct {
	Thresholds screening.Thresholds `mapstructure:"thresholds"`
}

type SkillsConfig struct {
	// Vocabulary replaces the built-in skill table when not empty.
	Vocabulary []string `mapstructure:"vocabulary"`
	Extra      []string `mapstructure:"extra"`
}

type SimilarityConfig struct {
	ExtraStopWords []string `mapstructure:"extra-stop-words"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	MaxUploadBytes int64         `mapstructure:"max-upload-bytes"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
}

type HeadhunterConfig struct {
	APIURL    string `mapstructure:"api-url"`
	UserAgent string `mapstructure:"user-agent"`
	TokenFile string `mapstructure:"token-file"`
}

func setDefaults(v *viper.Viper) {
	thresholds := screening.DefaultThresholds()

	v.SetDefault("screening.thresholds.shortlist", thresholds.Shortlist)
	v.SetDefault("screening.thresholds.maybe", thresholds.Maybe)
	v.SetDefault("skills.vocabulary", []string{})
	v.SetDefault("skills.extra", []string{})
	v.SetDefault("similarity.extra-stop-words", []string{})
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max-upload-bytes", server.DefaultMaxUploadBytes)
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 30*time.Second)
	v.SetDefault("headhunter.api-url", "https://api.hh.ru")
	v.SetDefault("headhunter.user-agent", "")
	v.SetDefault("headhunter.token-file", "")
}

// getConfig decodes v into a Config. Lists may be given as YAML sequences or
// as comma separated strings (the usual shape of environment variables).
func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config

	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if config == nil {
		config = &Config{}
	}
	if config.Screening == nil {
		config.Screening = &ScreeningConfig{Thresholds: screening.DefaultThresholds()}
	}
	if config.Skills == nil {
		config.Skills = &SkillsConfig{}
	}
	if config.Similarity == nil {
		config.Similarity = &SimilarityConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Headhunter == nil {
		config.Headhunter = &HeadhunterConfig{}
	}

	config.Skills.Vocabulary = trimAll(config.Skills.Vocabulary)
	config.Skills.Extra = trimAll(config.Skills.Extra)
	config.Similarity.ExtraStopWords = trimAll(config.Similarity.ExtraStopWords)

	if err := config.Screening.Thresholds.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func trimAll(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// vocabulary returns the configured skill table.
func (c *SkillsConfig) vocabulary() (*skills.Vocabulary, error) {
	phrases := c.Vocabulary
	if len(phrases) == 0 {
		phrases = skills.DefaultPhrases
	}

	all := make([]string, 0, len(phrases)+len(c.Extra))
	all = append(all, phrases...)
	all = append(all, c.Extra...)

	return skills.New(all...)
}

func buildAnalyzer(config *Config, logger *zap.Logger) (*screening.Analyzer, error) {
	var opts []similarity.Option
	if words := config.Similarity.ExtraStopWords; len(words) > 0 {
		opts = append(opts, similarity.WithExtraStopWords(words...))
	}

	scorer, err := similarity.NewTFIDF(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating scorer: %w", err)
	}

	vocabulary, err := config.Skills.vocabulary()
	if err != nil {
		return nil, fmt.Errorf("building skill vocabulary: %w", err)
	}

	logger.Debug("analyzer configured",
		zap.Int("skills", vocabulary.Len()),
		zap.Int("shortlist_threshold", config.Screening.Thresholds.Shortlist),
		zap.Int("maybe_threshold", config.Screening.Thresholds.Maybe),
		zap.Strings("extra_stop_words", config.Similarity.ExtraStopWords),
	)

	return screening.NewAnalyzer(scorer, vocabulary, config.Screening.Thresholds, logger)
}
