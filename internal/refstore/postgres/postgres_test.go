package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/testhelper"
)

func TestMain(m *testing.M) {
	testhelper.Run(m)
}

func TestDSN(t *testing.T) {
	testCases := []struct {
		desc string
		in   config.DB
		out  string
	}{
		{desc: "empty", in: config.DB{}, out: "binary_parameters=yes"},
		{
			desc: "basic",
			in: config.DB{
				Host:        "1.2.3.4",
				Port:        2345,
				User:        "praefect-user",
				Password:    "secret",
				DBName:      "reftx_production",
				SSLMode:     "require",
				SSLCert:     "/path/to/cert",
				SSLKey:      "/path/to/key",
				SSLRootCert: "/path/to/root-cert",
			},
			out: `port=2345 host=1.2.3.4 user=praefect-user password=secret dbname=reftx_production sslmode=require sslcert=/path/to/cert sslkey=/path/to/key sslrootcert=/path/to/root-cert binary_parameters=yes`,
		},
		{
			desc: "escaping",
			in: config.DB{
				Password: "secret foo",
				DBName:   "reftx's db",
			},
			out: `password=secret\ foo dbname=reftx\'s\ db binary_parameters=yes`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.out, DSN(tc.in))
		})
	}
}
