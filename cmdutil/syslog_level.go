package cmdutil

import (
	"errors"
	"fmt"
	"log/syslog"
	"strconv"
	"strings"
)

// ErrInvalidSyslogString is returned when a syslog level cannot be parsed.
var ErrInvalidSyslogString = errors.New("invalid syslog string")

// SyslogLvl is a syslog priority given by name (INFO) or number (6).
// It implements pflag.Value.
type SyslogLvl string

// Syslog levels.
const (
	LvlEmerg   SyslogLvl = "EMERG"
	LvlAlert   SyslogLvl = "ALERT"
	LvlCrit    SyslogLvl = "CRIT"
	LvlErr     SyslogLvl = "ERR"
	LvlWarning SyslogLvl = "WARN"
	LvlNotice  SyslogLvl = "NOTICE"
	LvlInfo    SyslogLvl = "INFO"
	LvlDebug   SyslogLvl = "DEBUG"
)

var syslogLevels = []struct {
	lvl SyslogLvl
	pri syslog.Priority
}{
	{LvlEmerg, syslog.LOG_EMERG},
	{LvlAlert, syslog.LOG_ALERT},
	{LvlCrit, syslog.LOG_CRIT},
	{LvlErr, syslog.LOG_ERR},
	{LvlWarning, syslog.LOG_WARNING},
	{LvlNotice, syslog.LOG_NOTICE},
	{LvlInfo, syslog.LOG_INFO},
	{LvlDebug, syslog.LOG_DEBUG},
}

func (l *SyslogLvl) String() string {
	if l == nil {
		return ""
	}
	return string(*l)
}

// Set parses str as a level name or priority number.
func (l *SyslogLvl) Set(str string) error {
	name := SyslogLvl(strings.ToUpper(strings.TrimSpace(str)))
	for _, e := range syslogLevels {
		if e.lvl == name {
			*l = name
			return nil
		}
	}

	p, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("%w '%s': %v", ErrInvalidSyslogString, str, err)
	}
	for _, e := range syslogLevels {
		if e.pri == syslog.Priority(p) {
			*l = e.lvl
			return nil
		}
	}
	return fmt.Errorf("%w '%s'", ErrInvalidSyslogString, str)
}

// Type implements pflag.Value.
func (l *SyslogLvl) Type() string {
	return "SyslogLvl"
}

// Priority returns the syslog priority of the level, LOG_INFO if unset.
func (l *SyslogLvl) Priority() syslog.Priority {
	if l != nil {
		for _, e := range syslogLevels {
			if e.lvl == *l {
				return e.pri
			}
		}
	}
	return syslog.LOG_INFO
}
