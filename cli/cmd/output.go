package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/scrip/lang"
)

// Output formats shared by the commands.
const (
	formatNative = "native"
	formatJSON   = "json"
	formatYAML   = "yaml"
	formatTokens = "tokens"
)

// writeEnvironment writes the assigned bindings of env's own scope.
func writeEnvironment(w io.Writer, format string, env *lang.Environment) error {
	if format != formatNative {
		return encode(w, format, lang.Native(env.Snapshot()))
	}

	for name, value := range env.All() {
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, lang.FormatValue(value)); err != nil {
			return err
		}
	}

	return nil
}

// writeValue writes a single runtime value.
func writeValue(w io.Writer, format string, v any) error {
	if format != formatNative {
		return encode(w, format, lang.Native(v))
	}

	_, err := fmt.Fprintln(w, lang.FormatValue(v))

	return err
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case formatYAML:
		if err := lang.FormatYAML(w, v); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil
	}

	return ErrInvalidFormat.With(slog.String("format", format))
}
