package main

import (
	"context"
	"fmt"

	"github.com/ucfglobal/studentforms/core/form"
)

// purge deletes every submission of one form type, attachments included.
func (cli *commandLine) purge(slug string) error {
	t, ok := form.TypeBySlug(slug)
	if !ok {
		return fmt.Errorf("%q: no such form type", slug)
	}

	count, err := cli.formSvc.DeleteAll(context.Background(), t)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d %q submissions\n", count, t.Slug)
	return nil
}
