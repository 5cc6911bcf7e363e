package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/walrus"
	"github.com/walrens/gateway/service/ens"
	resolver_usecase "github.com/walrens/gateway/stores/resolver/usecase"
)

const (
	defaultBase = "https://aggregator.walrus-mainnet.walrus.space/v1"

	outputJson = "json"
	outputYaml = "yaml"
)

func newApp() *cli.App {
	app := &cli.App{
		Name:  "walrens",
		Usage: "encode, inspect and resolve walrus text records of ENS names",
	}

	app.Commands = []*cli.Command{
		{
			Name:  "encode",
			Usage: "print the text record value of a mapping",
			Subcommands: []*cli.Command{
				{
					Name:      "blob",
					Usage:     "encode a blob mapping",
					ArgsUsage: "<blobId>",
					Action: func(c *cli.Context) error {
						id := c.Args().First()
						if id == "" {
							return cli.Exit("blob id is required", 1)
						}
						fmt.Fprintln(c.App.Writer, walrus.Stringify(walrus.Blob(id)))
						return nil
					},
				},
				{
					Name:      "site",
					Usage:     "encode a site mapping",
					ArgsUsage: "<siteObjectId>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "index", Usage: "index document of the site", Value: walrus.DefaultIndex},
						&cli.StringFlag{Name: "network", Usage: "walrus network tag"},
					},
					Action: func(c *cli.Context) error {
						id := c.Args().First()
						if id == "" {
							return cli.Exit("site object id is required", 1)
						}
						m := walrus.Site(id, c.String("index"), c.String("network"))
						fmt.Fprintln(c.App.Writer, walrus.Stringify(m))
						return nil
					},
				},
			},
		},
		{
			Name:      "decode",
			Usage:     "parse a text record value",
			ArgsUsage: "<value>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "json or yaml", Value: outputJson},
			},
			Action: func(c *cli.Context) error {
				m, ok := walrus.Parse(c.Args().First())
				if !ok {
					return cli.Exit(domain.ErrInvalidMapping.Error(), 1)
				}
				return write(c, m)
			},
		},
		{
			Name:      "url",
			Usage:     "print the aggregator url a request path maps to",
			ArgsUsage: "<value> [path]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "base", Usage: "aggregator base url", Value: defaultBase, EnvVars: []string{"WALRUS_BASE"}},
			},
			Action: func(c *cli.Context) error {
				m, ok := walrus.Parse(c.Args().Get(0))
				if !ok {
					return cli.Exit(domain.ErrInvalidMapping.Error(), 1)
				}
				fmt.Fprintln(c.App.Writer, walrus.BuildURL(m, c.Args().Get(1), c.String("base")))
				return nil
			},
		},
		{
			Name:      "resolve",
			Usage:     "resolve the walrus mapping of a name against an rpc",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "rpc", Usage: "ethereum json rpc url", EnvVars: []string{"ETH_RPC_URL"}, Required: true},
				&cli.StringFlag{Name: "registry", Usage: "ENS registry address, mainnet when empty"},
				&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
				&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "json or yaml", Value: outputJson},
			},
			Action: resolve,
		},
	}
	return app
}

type resolveOutput struct {
	Name     string         `json:"name" yaml:"name"`
	Key      string         `json:"key" yaml:"key"`
	Strategy string         `json:"strategy" yaml:"strategy"`
	Record   string         `json:"record" yaml:"record"`
	Mapping  walrus.Mapping `json:"mapping" yaml:"mapping"`
}

func resolve(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("name is required", 1)
	}

	svc, err := ens.New(ens.Config{
		RpcUrl:   c.String("rpc"),
		Registry: c.String("registry"),
		Timeout:  c.Duration("timeout"),
	})
	if err != nil {
		return err
	}

	cont, cancel := ctx.WithTimeout(ctx.From(c.Context), c.Duration("timeout"))
	defer cancel()

	rec, err := resolver_usecase.New(svc, nil).Resolve(cont, name)
	if err != nil {
		return err
	}
	m, ok := walrus.Parse(rec.Value)
	if !ok {
		return cli.Exit(domain.ErrInvalidMapping.Error()+": "+rec.Value, 1)
	}

	return write(c, resolveOutput{
		Name:     rec.Name,
		Key:      rec.Key,
		Strategy: string(rec.Strategy),
		Record:   rec.Value,
		Mapping:  m,
	})
}

func write(c *cli.Context, v interface{}) error {
	switch c.String("output") {
	case outputYaml:
		enc := yaml.NewEncoder(c.App.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputJson:
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return cli.Exit("unknown output "+c.String("output"), 1)
}
