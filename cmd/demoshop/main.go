package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	internalcli "github.com/themizzi/demoshop-e2e/internal/cli"
	"github.com/themizzi/demoshop-e2e/internal/config"
	"github.com/themizzi/demoshop-e2e/internal/demoshop"
	"github.com/themizzi/demoshop-e2e/internal/logging"
	"github.com/themizzi/demoshop-e2e/internal/models"
	"github.com/themizzi/demoshop-e2e/internal/session"
	"github.com/themizzi/demoshop-e2e/internal/shopstub"
)

var version = "0.1.0"

// buildShopDependencies resolves the target shop and account from the environment
func buildShopDependencies(c *cli.Context) (internalcli.ShopDependencies, error) {
	var deps internalcli.ShopDependencies

	cfg, err := config.LoadShopConfig()
	if err != nil {
		return deps, err
	}
	if env := c.String("env"); env != "" {
		cfg.Env = env
		cfg.APIURL = ""
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return deps, err
	}

	baseURL, err := cfg.APIBaseURL()
	if err != nil {
		return deps, err
	}
	log.Debug().Str("api_url", baseURL).Msg("using shop")

	deps.Client = demoshop.NewClient(session.New(baseURL, session.WithoutRedirects()))
	deps.Email = cfg.Login
	deps.Password = cfg.Password
	deps.Out = c.App.Writer
	return deps, nil
}

// shopAction wraps an account command with dependency setup
func shopAction(run func(c *cli.Context, deps internalcli.ShopDependencies) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		deps, err := buildShopDependencies(c)
		if err != nil {
			return err
		}
		return run(c, deps)
	}
}

// LoginCommand returns the login command
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in as LOGIN and print the auth cookie",
		Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
			return internalcli.RunLogin(c.Context, deps)
		}),
	}
}

// CartCommand returns the cart command
func CartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "Manage the shopping cart",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add products from the catalog by id",
				ArgsUsage: "<product-id>...",
				Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
					return internalcli.RunCartAdd(c.Context, deps, c.Args().Slice())
				}),
			},
			{
				Name:  "show",
				Usage: "Print the shopping cart",
				Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
					return internalcli.RunShowList(c.Context, deps, models.ShoppingCart)
				}),
			},
			{
				Name:  "clear",
				Usage: "Remove every line from the shopping cart",
				Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
					return internalcli.RunClear(c.Context, deps, "cart")
				}),
			},
		},
	}
}

// WishlistCommand returns the wishlist command
func WishlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "wishlist",
		Usage: "Manage the wishlist",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the wishlist and its share link",
				Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
					return internalcli.RunShowList(c.Context, deps, models.Wishlist)
				}),
			},
			{
				Name:  "clear",
				Usage: "Remove every line from the wishlist",
				Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
					return internalcli.RunClear(c.Context, deps, "wishlist")
				}),
			},
		},
	}
}

// CompareCommand returns the compare command
func CompareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Manage the product comparison list",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Empty the comparison list",
				Action: shopAction(func(c *cli.Context, deps internalcli.ShopDependencies) error {
					return internalcli.RunClear(c.Context, deps, "compare")
				}),
			},
		},
	}
}

// StubCommand returns the stub command
func StubCommand() *cli.Command {
	return &cli.Command{
		Name:  "stub",
		Usage: "Run the in-memory shop stub",
		Subcommands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the stub on PORT until interrupted",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadServerConfig()
					if err != nil {
						return err
					}

					store := shopstub.NewStore(map[string]string{cfg.Login: cfg.Password})
					stub, err := shopstub.New(store)
					if err != nil {
						return fmt.Errorf("failed to create shop stub: %w", err)
					}

					return internalcli.RunServe(internalcli.ServerDependencies{
						ServerConfig: cfg,
						Handler:      stub,
					})
				},
			},
		},
	}
}

func main() {
	config.LoadDotEnv()
	logging.SetupFromEnv()

	app := &cli.App{
		Name:    "demoshop",
		Usage:   "Drive the demo web shop account used by the e2e suite",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "named shop environment (prod, local); overrides API_URL",
			},
		},
		Commands: []*cli.Command{
			LoginCommand(),
			CartCommand(),
			WishlistCommand(),
			CompareCommand(),
			StubCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
