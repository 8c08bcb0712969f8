package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/goliatone/go-eventboard/components/eventboard"
)

type logosCmd struct {
	Add  logosAddCmd  `cmd:"" help:"Add or replace the logo for an event."`
	List logosListCmd `cmd:"" help:"List the effective logo mapping."`
}

type logosAddCmd struct {
	File string `required:"" type:"path" help:"Logo mapping YAML file to update."`
	Name string `required:"" help:"Event name as it appears in the endpoint payload."`
	Path string `help:"Logo path (default: derived from the event name)."`
}

func (cmd *logosAddCmd) Run(_ context.Context, out io.Writer) error {
	doc, err := eventboard.ReadLogoFile(cmd.File)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		doc = eventboard.LogoFile{}
	}
	if doc.Logos == nil {
		doc.Logos = map[string]string{}
	}
	logo := cmd.Path
	if logo == "" {
		logo = eventboard.DerivedLogoPath(cmd.Name)
	}
	doc.Logos[cmd.Name] = logo
	if err := eventboard.WriteLogoFile(cmd.File, doc); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s -> %s\n", cmd.Name, logo)
	return nil
}

type logosListCmd struct {
	File string `type:"path" help:"Logo mapping YAML file merged over the defaults."`
}

func (cmd *logosListCmd) Run(_ context.Context, out io.Writer) error {
	mapping, err := eventboard.LoadLogoMapping(cmd.File)
	if err != nil {
		return err
	}
	names := mapping.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s\t%s\n", name, mapping.Resolve(name))
	}
	fmt.Fprintf(out, "(default)\t%s\n", mapping.Fallback())
	return nil
}
