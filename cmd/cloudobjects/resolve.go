package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/health"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <coid>",
		Short: "Resolve an object and print its JSON-LD description",
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
			return writeJSON(a, obj.Document())
		},
	}
}

func (a *app) attachmentCmd() *cobra.Command {
	var info bool
	cmd := &cobra.Command{
		Use:   "attachment <coid> <file>",
		Short: "Print the content of a file attached to an object",
		Args:  cobra.ExactArgs(2),
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
			data, ok, err := s.resolver.Attachment(a.context(ctx), id, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s#%s", retriever.ErrNotFound, id, path.Base(args[1]))
			}
			if info {
				fmt.Fprintf(a.out, "%s: %s (%s bytes)\n",
					path.Base(args[1]), humanize.Bytes(uint64(len(data))), humanize.Comma(int64(len(data))))
				return nil
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&info, "info", false, "print the attachment size instead of its content")
	return cmd
}

func (a *app) lsCmd() *cobra.Command {
	var typeIRI string
	cmd := &cobra.Command{
		Use:   "ls <namespace>",
		Short: "List the objects of a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			ns, err := coid.Parse(args[0])
			if err != nil {
				return err
			}
			var objs []*retriever.Object
			if typeIRI != "" {
				objs, err = s.resolver.ObjectsInNamespaceWithType(ctx, ns, s.resolver.Reader().Expand(typeIRI))
			} else {
				objs, err = s.resolver.ObjectsInNamespace(ctx, ns)
			}
			if err != nil {
				return err
			}
			for _, obj := range objs {
				rev, _ := obj.Revision()
				fmt.Fprintf(a.out, "%s\t%s\n", obj.ID(), rev)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typeIRI, "type", "", "only list objects of this type (IRI or prefixed name)")
	return cmd
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the Object API and the cache store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			agg := health.NewAggregator(health.AggregatorConfig{Timeout: s.cfg.Timeout})
			agg.Register(s.resolver.HealthChecker())
			agg.Register(health.FromError("cache", func(ctx context.Context) error {
				return cache.HealthCheck(ctx, s.resolver.Store())
			}))

			report := agg.Run(ctx)
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(data))
			if !report.Healthy() {
				return fmt.Errorf("health: %s", report.Status)
			}
			return nil
		},
	}
}

func writeJSON(a *app, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = a.out.Write(data)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(a.out)
	return err
}
