package chat

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
)

const DefaultProfileName = "Assistant"

// Profile is a named chat configuration selectable by the user.
type Profile struct {
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	Mode         Mode   `yaml:"mode" json:"mode"`
	SystemPrompt string `yaml:"system_prompt,omitempty" json:"-"`
	Welcome      string `yaml:"welcome,omitempty" json:"welcome,omitempty"`
}

func (x *Profile) Validate() error {
	if x.Name == "" {
		return goerr.New("profile name is required", goerr.T(errs.TagValidation))
	}
	if err := x.Mode.Validate(); err != nil {
		return goerr.Wrap(err, "invalid profile", goerr.TV(errs.ProfileKey, x.Name))
	}
	return nil
}

// DefaultProfiles is used when no profile file is configured.
func DefaultProfiles() []*Profile {
	return []*Profile{
		{
			Name:        DefaultProfileName,
			Description: "Votre assistant virtuel.",
			Mode:        ModeAgent,
		},
		{
			Name:        "Explorer",
			Description: "Commands: `describe <table>`, `execute bq <sql>`, `list tables`",
			Mode:        ModeCommand,
		},
		{
			Name:        "Catalog",
			Description: "Lists the BigQuery tables you can access",
			Mode:        ModeList,
		},
		{
			Name:        "Direct",
			Description: "Chat with the model without BigQuery tools",
			Mode:        ModeDirect,
		},
		{
			Name:        "Echo",
			Description: "Echoes your messages back",
			Mode:        ModeEcho,
		},
	}
}
