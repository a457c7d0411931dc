package cmdutil

import (
	"errors"
	"log/syslog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyslogLvl_Set(t *testing.T) {
	cases := []struct {
		in      string
		want    SyslogLvl
		wantPri syslog.Priority
		wantErr bool
	}{
		{in: "INFO", want: LvlInfo, wantPri: syslog.LOG_INFO},
		{in: "warn", want: LvlWarning, wantPri: syslog.LOG_WARNING},
		{in: "3", want: LvlErr, wantPri: syslog.LOG_ERR},
		{in: "0", want: LvlEmerg, wantPri: syslog.LOG_EMERG},
		{in: "42", wantErr: true},
		{in: "loud", wantErr: true},
	}
	for _, tc := range cases {
		var lvl SyslogLvl
		err := lvl.Set(tc.in)
		if tc.wantErr {
			require.True(t, errors.Is(err, ErrInvalidSyslogString), tc.in)
			require.Equal(t, syslog.LOG_INFO, lvl.Priority())
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, lvl)
		require.Equal(t, tc.wantPri, lvl.Priority())
	}
}
