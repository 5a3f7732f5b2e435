package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnhub-backend/internal/app"
)

// commandContext opens the application lazily so commands that need no database
// (braille) never connect.
type commandContext struct {
	newApp     func() (*app.App, error)
	app        *app.App
	jsonOutput bool
}

func newCommandContext(newApp func() (*app.App, error)) *commandContext {
	return &commandContext{newApp: newApp}
}

func (c *commandContext) ensureApp() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.newApp()
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
