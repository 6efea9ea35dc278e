package config

// NewProfile returns a Profile reading configFile.
func NewProfile(configFile string) *Profile {
	return &Profile{configFile: configFile}
}

// NewLLMCfg returns an LLMCfg with the given provider and project IDs.
func NewLLMCfg(provider, claudeProjectID, geminiProjectID string) *LLMCfg {
	return &LLMCfg{
		provider:        provider,
		claudeProjectID: claudeProjectID,
		geminiProjectID: geminiProjectID,
	}
}
