package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloudobjects/cloudobjects-go/aauid"
	"github.com/cloudobjects/cloudobjects-go/coid"
)

func (a *app) coidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coid <id>",
		Short: "Classify a COID and print its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := coid.Normalize(args[0])
			printCOID(a.out, id)
			if !id.IsValid() {
				return fmt.Errorf("%w: %q", coid.ErrInvalid, args[0])
			}
			return nil
		},
	}
}

func printCOID(w io.Writer, id coid.ID) {
	fmt.Fprintf(w, "coid:      %s\n", id)
	fmt.Fprintf(w, "kind:      %s\n", id.Kind())
	if v, ok := id.Authority(); ok {
		fmt.Fprintf(w, "authority: %s\n", v)
	}
	if v, ok := id.Name(); ok {
		fmt.Fprintf(w, "name:      %s\n", v)
	}
	if v, ok := id.Version(); ok {
		fmt.Fprintf(w, "version:   %s\n", v)
	}
	if v, ok := id.VersionWildcard(); ok {
		fmt.Fprintf(w, "wildcard:  %s\n", v)
	}
	if ns, ok := id.Namespace(); ok && ns != id {
		fmt.Fprintf(w, "namespace: %s\n", ns)
	}
}

func (a *app) aauidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aauid <id>",
		Short: "Classify an AAUID and print its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := aauid.Normalize(args[0])
			fmt.Fprintf(a.out, "aauid:     %s\n", id)
			fmt.Fprintf(a.out, "kind:      %s\n", id.Kind())
			if v, ok := id.AccountID(); ok {
				fmt.Fprintf(a.out, "account:   %s\n", v)
			}
			if v, ok := id.Qualifier(); ok {
				fmt.Fprintf(a.out, "qualifier: %s\n", v)
			}
			if !id.IsValid() {
				return fmt.Errorf("%w: %q", aauid.ErrInvalid, args[0])
			}
			return nil
		},
	}
}
