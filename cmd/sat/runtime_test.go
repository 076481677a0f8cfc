// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bytes"
	"strings"

	"github.com/juju/cmd/v4/cmdtesting"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type runtimeSuite struct {
	baseSuite
}

var _ = gc.Suite(&runtimeSuite{})

func (s *runtimeSuite) TestConfirm(c *gc.C) {
	for _, test := range []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{" YES \n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	} {
		var out bytes.Buffer
		ok, err := confirm(strings.NewReader(test.answer), &out, "Go on?")
		c.Assert(err, jc.ErrorIsNil)
		c.Check(ok, gc.Equals, test.want, gc.Commentf("answer %q", test.answer))
		c.Check(out.String(), gc.Equals, "Go on? (y/N): ")
	}
}

func (s *runtimeSuite) TestParseIDs(c *gc.C) {
	ids, err := parseIDs([]string{s.alpha.Setup.ID.String()})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(ids, gc.HasLen, 1)
	c.Check(ids[0], gc.Equals, s.alpha.Setup.ID)

	_, err = parseIDs([]string{"x"})
	c.Check(err, gc.ErrorMatches, `identity "x" not valid`)
}

func (s *runtimeSuite) TestInitErrors(c *gc.C) {
	err := cmdtesting.InitCommand(newSyncCommand(), nil)
	c.Check(err, gc.ErrorMatches, "no roots specified")
	err = cmdtesting.InitCommand(newStressCommand(), []string{"--server", "other"})
	c.Check(err, gc.ErrorMatches, `server "other" not valid`)
	err = cmdtesting.InitCommand(newInspectArchiveCommand(), []string{"a.zip", "b.zip"})
	c.Check(err, gc.ErrorMatches, `unrecognized args: \["b.zip"\]`)
	err = cmdtesting.InitCommand(newMigrateCommand(), []string{"--yes", s.alpha.Setup.ID.String()})
	c.Check(err, jc.ErrorIsNil)
}

func (s *runtimeSuite) TestMetricsEndpoint(c *gc.C) {
	s.install(c)
	s.writeConfig(c, "metrics-addr: 127.0.0.1:0\n")
	code, stdout, _ := s.run(c, "", "validate", "--config", s.configPath)
	c.Check(code, gc.Equals, 0)
	c.Check(stdout, gc.Equals, "No violations found.\n")
}

func (s *runtimeSuite) TestMetricsAddressInUse(c *gc.C) {
	s.install(c)
	s.writeConfig(c, "metrics-addr: "+strings.TrimPrefix(s.upload.URL, "http://")+"\n")
	code, _, stderr := s.run(c, "", "validate", "--config", s.configPath)
	c.Check(code, gc.Equals, 1)
	c.Check(stderr, jc.Contains, "ERROR listening on ")
}

func (s *runtimeSuite) TestSummaryReported(c *gc.C) {
	s.install(c)
	code, _, stderr := s.run(c, "", "sync", "--config", s.configPath, s.alpha.Setup.ID.String())
	c.Check(code, gc.Equals, 0)
	c.Check(stderr, jc.Contains, "1 warning(s), 0 error(s)")
}
