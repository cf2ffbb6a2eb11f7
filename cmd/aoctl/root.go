package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/aestheticops/internal/config"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/store"
	"github.com/dropDatabas3/aestheticops/internal/store/fs"
)

type cli struct {
	in  io.Reader
	out io.Writer

	cfgPath string
	envFile string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:           "aoctl",
		Short:         "Herramientas de administración de AestheticOps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.cfgPath, "config", os.Getenv("CONFIG_PATH"), "ruta a config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "ruta a .env (si existe, se carga)")

	root.AddCommand(c.hashPasswordCmd())

	usersCmd := &cobra.Command{Use: "users", Short: "Operaciones sobre usuarios del store configurado"}
	usersCmd.AddCommand(c.usersListCmd())
	usersCmd.AddCommand(c.usersImportCmd())
	root.AddCommand(usersCmd)

	return root
}

func (c *cli) openRepo(ctx context.Context) (repository.UserRepository, error) {
	if c.envFile != "" {
		if st, err := os.Stat(c.envFile); err == nil && !st.IsDir() {
			_ = godotenv.Load(c.envFile)
		}
	}
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return store.Open(ctx, store.Config{
		Driver:   cfg.Storage.Driver,
		DSN:      cfg.Storage.DSN,
		FSPath:   cfg.Storage.FS.Path,
		MaxConns: cfg.Storage.Postgres.MaxConns,
	})
}

func (c *cli) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Imprime el hash argon2id de una password (si no se pasa, se lee de stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var plain string
			if len(args) == 1 {
				plain = args[0]
			} else {
				line, err := bufio.NewReader(c.in).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				plain = strings.TrimRight(line, "\r\n")
			}
			if plain == "" {
				return fmt.Errorf("password vacía")
			}
			h, err := password.Hash(password.Default, plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, h)
			return nil
		},
	}
}

func (c *cli) usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista id, email, rol y esquema de credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := c.openRepo(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			users, err := repo.List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tCLINIC\tSCHEME")
			for _, u := range users {
				scheme := string(u.Password.Scheme)
				if scheme == "" {
					scheme = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.ClinicName, scheme)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) usersImportCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copia los usuarios de un db.json legacy al store configurado",
		Long: `Copia los usuarios tal cual, incluido su credential: los que estén en
claro se migran a hash en su próximo login. Los emails ya presentes en el
destino se saltean y se reportan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return fmt.Errorf("--from es requerido")
			}
			ctx := cmd.Context()
			if _, err := os.Stat(from); err != nil {
				return err
			}

			src, err := fs.New(from)
			if err != nil {
				return err
			}
			defer src.Close()
			users, err := src.List(ctx)
			if err != nil {
				return fmt.Errorf("leer %s: %w", from, err)
			}

			dst, err := c.openRepo(ctx)
			if err != nil {
				return err
			}
			defer dst.Close()

			imported, skipped := 0, 0
			for i := range users {
				u := &users[i]
				if err := dst.Create(ctx, u); err != nil {
					if repository.IsConflict(err) {
						skipped++
						fmt.Fprintf(c.out, "skip %s: ya existe\n", u.Email)
						continue
					}
					return fmt.Errorf("importar %s: %w", u.Email, err)
				}
				imported++
			}
			fmt.Fprintf(c.out, "imported=%d skipped=%d\n", imported, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "ruta al db.json de origen")
	return cmd
}
