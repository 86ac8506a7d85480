package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/schema"
)

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <coid>",
		Short: "Export a json:Element definition as JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			id, err := coid.Parse(args[0])
			if err != nil {
				return err
			}
			obj, err := s.resolver.Require(a.context(ctx), id)
			if err != nil {
				return err
			}
			js, err := schema.NewValidator(s.resolver).JSONSchema(obj.Node())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(js, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(data))
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <coid> <file>",
		Short: "Validate a JSON file against a json:Element definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			id, err := coid.Parse(args[0])
			if err != nil {
				return err
			}
			if err := schema.NewValidator(s.resolver).ValidateJSON(a.context(ctx), raw, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: valid\n", args[1])
			return nil
		},
	}
}
