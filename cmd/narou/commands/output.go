package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return name
}

// printItems renders entities of pointer fields as a table, only columns
// with at least one value are shown.
func printItems[E any](allCount *uint32, items []E) error {
	if outputJSON {
		return printJSON(struct {
			AllCount *uint32 `json:"allcount,omitempty"`
			Items    []E     `json:"items"`
		}{allCount, items})
	}

	typ := reflect.TypeOf((*E)(nil)).Elem()
	var columns []int
	for i := 0; i < typ.NumField(); i++ {
		for _, item := range items {
			if !reflect.ValueOf(item).Field(i).IsNil() {
				columns = append(columns, i)
				break
			}
		}
	}

	t := newTable()
	header := table.Row{}
	for _, i := range columns {
		header = append(header, jsonName(typ.Field(i)))
	}
	t.AppendHeader(header)
	for _, item := range items {
		row := table.Row{}
		value := reflect.ValueOf(item)
		for _, i := range columns {
			field := value.Field(i)
			if field.IsNil() {
				row = append(row, "")
				continue
			}
			row = append(row, field.Elem().Interface())
		}
		t.AppendRow(row)
	}
	if allCount != nil {
		t.AppendFooter(table.Row{fmt.Sprintf("allcount: %d", *allCount)})
	}
	t.Render()
	return nil
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}

// boolFlag maps a set boolean flag to the api's 0/1 convention.
func boolFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil
	}
	n := 0
	if v {
		n = 1
	}
	return &n
}
