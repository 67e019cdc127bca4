package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-openregister"
)

// Output formats for the records command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// recordView is a resolved record as written by the json and yaml formats.
type recordView struct {
	ID     string        `json:"id" yaml:"id"`
	Fields orderedFields `json:"fields" yaml:"fields"`
}

// orderedFields marshals as an object whose keys keep the register's
// declared field order. Blank fields are omitted.
type orderedFields struct {
	names  []string
	values map[string]string
}

func (f orderedFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f orderedFields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range f.names {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.values[name]},
		)
	}
	return node, nil
}

// resolveOrdered resolves every present field of rec in declared order.
func resolveOrdered(ctx context.Context, rec *openregister.Record) (orderedFields, error) {
	fields := orderedFields{values: make(map[string]string, rec.Len())}
	for name, fv := range rec.All() {
		value, ok, err := fv.Value(ctx)
		if err != nil {
			return orderedFields{}, fmt.Errorf("record %s field %s: %w", rec.ID(), name, err)
		}
		if !ok {
			continue
		}
		fields.names = append(fields.names, name)
		fields.values[name] = value
	}
	return fields, nil
}

func (a *app) recordsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "records <register>",
		Short: "Print a register's records with curies resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.catalog.Register(cmd.Context(), a.cfg.Phase, args[0])
			if err != nil {
				return err
			}
			records, err := r.Records(cmd.Context())
			if err != nil {
				return err
			}
			return writeRecords(cmd.Context(), a.out, records, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", FormatText, "output format: text, json or yaml")
	return cmd
}

func writeRecords(ctx context.Context, w io.Writer, records *openregister.Records, format string) error {
	switch format {
	case FormatText:
		return writeRecordsText(ctx, w, records)
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}

	views := make([]recordView, 0, records.Len())
	for id, rec := range records.All() {
		fields, err := resolveOrdered(ctx, rec)
		if err != nil {
			return err
		}
		views = append(views, recordView{ID: id, Fields: fields})
	}

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return err
	}
	return enc.Close()
}

// writeRecordsText prints each record id followed by its fields in declared
// order. Blank fields are shown as None.
func writeRecordsText(ctx context.Context, w io.Writer, records *openregister.Records) error {
	for id, rec := range records.All() {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
		for name, fv := range rec.All() {
			value, ok, err := fv.Value(ctx)
			if err != nil {
				return fmt.Errorf("record %s field %s: %w", id, name, err)
			}
			if !ok {
				value = "None"
			}
			if _, err := fmt.Fprintf(w, "  %s: %s\n", name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
