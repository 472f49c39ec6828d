package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fieldforce/pkg/identity"
)

var errInvalidValues = errors.New("invalid identity values")

func newValidateCmd() *cobra.Command {
	var idType string

	cmd := &cobra.Command{
		Use:   "validate VALUE...",
		Short: "Validate SA ID or passport numbers",
		Long: "Validates each value with the same rules the API applies and prints one line per value.\n" +
			"Exits non-zero when any value is invalid.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), idType, args)
		},
	}

	cmd.Flags().StringVarP(&idType, "type", "t", string(identity.TypeNationalID), "Identity type: sa_id or passport")

	return cmd
}

func runValidate(w io.Writer, idType string, values []string) error {
	t, err := identity.ParseType(idType)
	if err != nil {
		return fmt.Errorf("--type %q: %w", idType, err)
	}

	invalid := 0
	for _, v := range values {
		res := identity.Validate(t, v)
		if res.Valid {
			fmt.Fprintf(w, "%q\tvalid\t%s\n", v, res.NormalizedValue)
			continue
		}
		invalid++
		fmt.Fprintf(w, "%q\tinvalid\t%s\n", v, res.ErrorMessage)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d: %w", invalid, len(values), errInvalidValues)
	}
	return nil
}
