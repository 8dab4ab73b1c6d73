package installer

import "github.com/sandevgo/tuskdash/pkg/env"

type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}

// Render returns the .env content for the collected values, skipping empty ones.
func (s *InstallState) Render() string {
	values := make(map[string]string, len(s.EnvVars))
	for k, v := range s.EnvVars {
		if v != "" {
			values[k] = v
		}
	}
	return env.MarshalMap(values)
}
