package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnhub-backend/internal/artifacts/textextract"
	"github.com/yungbote/learnhub-backend/internal/braille"
)

type brailleOutput struct {
	braille.Result
	Validation braille.Validation `json:"validation"`
	BRF        string             `json:"brf,omitempty"`
	Back       string             `json:"backTranslation,omitempty"`
}

func newBrailleCommand(ctx *commandContext) *cobra.Command {
	var (
		fromStdin bool
		payload   string
		brf       bool
		width     int
		back      bool
	)
	cmd := &cobra.Command{
		Use:   "braille [text]",
		Short: "Convert text with inline LaTeX to Grade 1 braille and Nemeth",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := brailleInput(cmd.InOrStdin(), args, fromStdin, payload)
			if err != nil {
				return err
			}
			out := convertForCLI(doc, brf, width, back)
			if ctx.jsonOutput {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			switch {
			case brf:
				fmt.Fprint(w, out.BRF)
			default:
				fmt.Fprintln(w, out.FullBraille)
			}
			if back {
				fmt.Fprintln(w, out.Back)
			}
			for _, warn := range out.Validation.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warn)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the document from stdin")
	cmd.Flags().StringVar(&payload, "payload", "", "Read a structured content JSON file and convert its text")
	cmd.Flags().BoolVar(&brf, "brf", false, "Reflow the output as BRF lines")
	cmd.Flags().IntVar(&width, "width", braille.LineWidth, "BRF line width in cells")
	cmd.Flags().BoolVar(&back, "back", false, "Also print a back-translation")
	return cmd
}

func brailleInput(stdin io.Reader, args []string, fromStdin bool, payloadPath string) (string, error) {
	switch {
	case payloadPath != "":
		raw, err := os.ReadFile(payloadPath)
		if err != nil {
			return "", err
		}
		return textextract.Extract(raw), nil
	case fromStdin:
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	return "", errors.New("no input: pass text, --stdin or --payload")
}

func convertForCLI(doc string, brf bool, width int, back bool) brailleOutput {
	res := braille.ConvertMixed(doc)
	out := brailleOutput{Result: res, Validation: braille.ValidateSegments(res.Segments)}
	if brf {
		out.BRF = braille.FormatBRF(res.FullBraille, width)
	}
	if back {
		out.Back = braille.BackTranslate(res.FullBraille)
	}
	return out
}
