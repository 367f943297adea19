package cmd

import (
	"bufio"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"cryptopay/internal/client/api"
	"cryptopay/internal/client/session"
)

// deps wires the session manager and API client lazily so flag parsing has
// finished before the server URL is read.
type deps struct {
	serverURL *string

	once sync.Once
	sess *session.Manager
	api  *api.Client

	inOnce sync.Once
	in     *bufio.Reader
}

// reader hands out one shared buffered reader so consecutive prompts within a
// command run do not swallow each other's input.
func (d *deps) reader(cmd *cobra.Command) *bufio.Reader {
	d.inOnce.Do(func() {
		d.in = bufio.NewReader(cmd.InOrStdin())
	})
	return d.in
}

func (d *deps) init() {
	d.once.Do(func() {
		if d.sess == nil {
			d.sess = session.NewManager(session.DefaultPath())
		}
		d.api = api.New(*d.serverURL, d.sess)
	})
}

func (d *deps) client() *api.Client {
	d.init()
	return d.api
}

func (d *deps) session() *session.Manager {
	d.init()
	return d.sess
}

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "cryptopay",
		Short: "Crypto Payment Gateway dashboard",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Gateway base URL")

	d := &deps{serverURL: &serverURL}
	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(d))
	root.AddCommand(newPagesCmd(d))
	root.AddCommand(newEarningsCmd(d))
	root.AddCommand(newProfileCmd(d))
	root.AddCommand(newPayCmd(d))
	return root
}

func defaultServerURL() string {
	if v, ok := os.LookupEnv("CRYPTOPAY_SERVER_URL"); ok && v != "" {
		return v
	}
	return "http://localhost:5000"
}
