package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// ProfileFile is the YAML layout of --profile-file.
type ProfileFile struct {
	Profiles []*chat.Profile `yaml:"profiles"`
}

type Profile struct {
	configFile string
}

func (x *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile-file",
			Usage:       "Path to chat profile YAML file. Built-in profiles are used when empty",
			Category:    "Chat",
			Destination: &x.configFile,
			Sources:     cli.EnvVars("BQCHAT_PROFILE_FILE"),
		},
	}
}

func (x Profile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config_file", x.configFile),
	)
}

// Load returns the configured profiles, or the built-in ones without a file.
func (x *Profile) Load() ([]*chat.Profile, error) {
	if x.configFile == "" {
		return chat.DefaultProfiles(), nil
	}

	data, err := os.ReadFile(x.configFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("file", x.configFile))
	}

	return ParseProfiles(data)
}

// ParseProfiles decodes and validates a profile file. Names must be unique.
func ParseProfiles(data []byte) ([]*chat.Profile, error) {
	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse profile file")
	}
	if len(file.Profiles) == 0 {
		return nil, goerr.New("no profile defined")
	}

	seen := make(map[string]struct{}, len(file.Profiles))
	for _, p := range file.Profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[p.Name]; ok {
			return nil, goerr.New("duplicated profile name", goerr.V("name", p.Name))
		}
		seen[p.Name] = struct{}{}
	}

	return file.Profiles, nil
}
