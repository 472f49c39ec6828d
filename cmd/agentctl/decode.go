package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	id "fieldforce/pkg/domain"
	"fieldforce/pkg/identity"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode ID_NUMBER",
		Short: "Show the details encoded in an SA ID number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), args[0], time.Now())
		},
	}
}

func runDecode(w io.Writer, raw string, now time.Time) error {
	details, err := identity.DecodeNationalID(raw)
	if err != nil {
		return fmt.Errorf("decoding %q: %w", raw, err)
	}

	fmt.Fprintf(w, "birth_date:  %s\n", details.BirthDate.Format(time.DateOnly))
	fmt.Fprintf(w, "age:         %d\n", id.AgeAt(details.BirthDate, now))
	fmt.Fprintf(w, "gender:      %s\n", details.Gender)
	fmt.Fprintf(w, "citizenship: %s\n", details.Citizenship)
	return nil
}
