package chat

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
)

// Mode selects how a chat turn is answered.
type Mode string

const (
	// ModeEcho replies with the user's own message.
	ModeEcho Mode = "echo"
	// ModeList answers every turn with the accessible table list.
	ModeList Mode = "list"
	// ModeCommand understands `describe <id>`, `execute bq <sql>` and list requests.
	ModeCommand Mode = "command"
	// ModeAgent lets the LLM call BigQuery tools.
	ModeAgent Mode = "agent"
	// ModeDirect talks to the LLM without tools.
	ModeDirect Mode = "direct"
)

var allModes = []Mode{ModeEcho, ModeList, ModeCommand, ModeAgent, ModeDirect}

func Modes() []Mode {
	return append([]Mode{}, allModes...)
}

func (x Mode) Validate() error {
	for _, m := range allModes {
		if x == m {
			return nil
		}
	}
	return goerr.New("invalid chat mode", goerr.V("mode", string(x)), goerr.T(errs.TagValidation))
}

// NeedsBigQuery reports whether the mode talks to BigQuery.
func (x Mode) NeedsBigQuery() bool {
	return x == ModeList || x == ModeCommand || x == ModeAgent
}

// NeedsLLM reports whether the mode requires an LLM client.
func (x Mode) NeedsLLM() bool {
	return x == ModeAgent || x == ModeDirect
}

func (x Mode) String() string { return string(x) }
