// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package session_test

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session/mocks"
)

type sessionSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&sessionSuite{})

func (s *sessionSuite) TestCredentialsValidate(c *gc.C) {
	c.Check(session.Credentials{Username: "admin"}.Validate(), gc.ErrorMatches, "empty URI not valid")
	c.Check(session.Credentials{URI: "http://x/"}.Validate(), gc.ErrorMatches, "empty Username not valid")
	c.Check(session.Credentials{URI: "http://x/", Username: "admin"}.Validate(), jc.ErrorIsNil)
}

func (s *sessionSuite) TestBaseURI(c *gc.C) {
	c.Check(session.Credentials{URI: "http://x"}.BaseURI(), gc.Equals, "http://x/")
	c.Check(session.Credentials{URI: "http://x/"}.BaseURI(), gc.Equals, "http://x/")
}

func (s *sessionSuite) TestReloginRotatesPassword(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	sess := mocks.NewMockSession(ctrl)
	creds := session.Credentials{URI: "http://x/", Username: "admin", Password: "old"}
	rotated := creds
	rotated.Password = "new"
	gomock.InOrder(
		sess.EXPECT().IsOpen().Return(true),
		sess.EXPECT().Close().Return(nil),
		sess.EXPECT().Credentials().Return(creds),
		sess.EXPECT().SetCredentials(rotated),
		sess.EXPECT().Open(gomock.Any()).Return(nil),
	)
	c.Assert(session.Relogin(context.Background(), sess, "new"), jc.ErrorIsNil)
}

func (s *sessionSuite) TestReloginKeepsPassword(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	sess := mocks.NewMockSession(ctrl)
	gomock.InOrder(
		sess.EXPECT().IsOpen().Return(false),
		sess.EXPECT().Open(gomock.Any()).Return(errors.New("denied")),
	)
	err := session.Relogin(context.Background(), sess, "")
	c.Check(err, gc.ErrorMatches, "reopening session: denied")
}

func (s *sessionSuite) TestSiteDirectoryOfClosedSession(c *gc.C) {
	_, err := session.SiteDirectory(nil)
	c.Check(err, jc.Satisfies, errors.IsNotFound)

	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	sess := mocks.NewMockSession(ctrl)
	sess.EXPECT().IsOpen().Return(false)
	_, err = session.SiteDirectory(sess)
	c.Check(err, jc.Satisfies, errors.IsNotFound)
}
