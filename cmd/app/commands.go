package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/rolodex/internal"
	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/archive"
	"github.com/starford/rolodex/internal/models"
)

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// phoneArg returns the single positional phone argument.
func phoneArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected exactly one phone argument", cmd.Name)
	}
	return cmd.Args().First(), nil
}

// describe maps book errors to console messages.
func describe(phone string, err error) error {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return errors.New(ve.Msg)
	case errors.Is(err, apperr.ErrNotFound):
		return fmt.Errorf("not found: %s", phone)
	case errors.Is(err, apperr.ErrPersist):
		return fmt.Errorf("failed to save contacts: %w", err)
	default:
		return err
	}
}

func printContact(w io.Writer, c models.Contact) {
	d := c.RecordData()
	fmt.Fprintf(w, "Name:     %s\n", d.Name)
	fmt.Fprintf(w, "Phone:    %s\n", d.Phone)
	fmt.Fprintf(w, "Email:    %s\n", d.Email)
	fmt.Fprintf(w, "Address:  %s\n", d.Address)
	fmt.Fprintf(w, "Notes:    %s\n", d.Notes)
	fmt.Fprintf(w, "Created:  %s\n", d.CreatedDate)
	fmt.Fprintf(w, "Modified: %s\n", d.ModifiedDate)
}

func printList(w io.Writer, contacts []models.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(w, "no contacts")
		return
	}
	for i, c := range contacts {
		fmt.Fprintf(w, "%d. %s\n", i+1, c)
	}
}

// fieldFlags returns fresh flags, since a flag keeps state per command.
func fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Full name"},
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
		&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Postal address"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a contact",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "phone", Aliases: []string{"p"}, Usage: "Phone number, used as the key"},
		}, fieldFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			c, err := b.Add(cmd.String("name"), cmd.String("phone"), cmd.String("email"),
				cmd.String("address"), cmd.String("notes"))
			if err != nil {
				return describe(cmd.String("phone"), err)
			}
			fmt.Fprintf(stdout(cmd), "added: %s\n", c)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List contacts sorted by name",
		Action: func(_ context.Context, cmd *cli.Command) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			printList(stdout(cmd), b.List())
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find contacts by name, phone or email",
		ArgsUsage: "[query]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			printList(stdout(cmd), b.Search(strings.Join(cmd.Args().Slice(), " ")))
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show every field of one contact",
		ArgsUsage: "<phone>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			phone, err := phoneArg(cmd)
			if err != nil {
				return err
			}
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			c, err := b.Get(phone)
			if err != nil {
				return describe(phone, err)
			}
			printContact(stdout(cmd), c)
			return nil
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change fields of a contact; only the flags given are changed",
		ArgsUsage: "<phone>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "new-phone", Usage: "Replacement phone number"},
		}, fieldFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			phone, err := phoneArg(cmd)
			if err != nil {
				return err
			}
			fields := make(map[string]string)
			for flag, field := range map[string]string{
				"new-phone": "phone",
				"name":      "name",
				"email":     "email",
				"address":   "address",
				"notes":     "notes",
			} {
				if cmd.IsSet(flag) {
					fields[field] = cmd.String(flag)
				}
			}

			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			c, err := b.Update(phone, models.ChangesFromMap(fields))
			if err != nil {
				return describe(phone, err)
			}
			fmt.Fprintf(stdout(cmd), "updated: %s\n", c)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a contact",
		ArgsUsage: "<phone>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			phone, err := phoneArg(cmd)
			if err != nil {
				return err
			}
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			c, err := b.Get(phone)
			if err != nil {
				return describe(phone, err)
			}

			out := stdout(cmd)
			if !cmd.Bool("yes") {
				fmt.Fprintf(out, "Delete %s? [y/N] ", c)
				answer, _ := bufio.NewReader(stdin(cmd)).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(out, "cancelled")
					return nil
				}
			}

			if _, err := b.Delete(phone); err != nil {
				return describe(phone, err)
			}
			fmt.Fprintf(out, "deleted: %s\n", c)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count contacts and filled-in fields",
		Action: func(_ context.Context, cmd *cli.Command) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			s := b.Stats()
			out := stdout(cmd)
			fmt.Fprintf(out, "Total contacts:        %d\n", s.Total)
			fmt.Fprintf(out, "Contacts with email:   %d\n", s.WithEmail)
			fmt.Fprintf(out, "Contacts with address: %d\n", s.WithAddress)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write every contact to a SQLite archive",
		ArgsUsage: "<archive.db>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("export: expected exactly one archive path")
			}
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			db, err := archive.Open(cmd.Args().First())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Export(b.Contacts())
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "exported %d contacts to %s\n", n, cmd.Args().First())
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Add contacts from a SQLite archive with their timestamps, skipping known phones",
		ArgsUsage: "<archive.db>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("import: expected exactly one archive path")
			}
			db, err := archive.Open(cmd.Args().First())
			if err != nil {
				return err
			}
			defer db.Close()

			contacts, err := db.Contacts()
			if err != nil {
				return err
			}
			b, err := openBook(cmd)
			if err != nil {
				return err
			}

			out := stdout(cmd)
			added, skipped := 0, 0
			for _, c := range contacts {
				_, err := b.Insert(c)
				var ve *apperr.ValidationError
				switch {
				case err == nil:
					added++
				case errors.As(err, &ve):
					skipped++
					fmt.Fprintf(out, "skipped %s: %s\n", c, ve.Msg)
				default:
					return describe(c.Phone, err)
				}
			}
			fmt.Fprintf(out, "imported %d contacts, skipped %d\n", added, skipped)
			return nil
		},
	}
}
