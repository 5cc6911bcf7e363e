package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v2"
)

type commandsSuite struct {
	suite.Suite
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(commandsSuite))
}

func (s *commandsSuite) run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	app.ErrWriter = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"walrens"}, args...))
	return out.String(), err
}

func (s *commandsSuite) TestEncode() {
	out, err := s.run("encode", "blob", "abc123")
	s.NoError(err)
	s.Equal("blob:abc123\n", out)

	out, err = s.run("encode", "site", "--index", "home.html", "--network", "testnet", "0x1")
	s.NoError(err)
	s.Equal(`{"type":"site","id":"0x1","index":"home.html","network":"testnet"}`+"\n", out)

	out, err = s.run("encode", "site", "0x1")
	s.NoError(err)
	s.Equal(`{"type":"site","id":"0x1","index":"index.html"}`+"\n", out)

	_, err = s.run("encode", "blob")
	s.Error(err)
}

func (s *commandsSuite) TestDecode() {
	out, err := s.run("decode", `{"type":"site","objectId":"0x2"}`)
	s.NoError(err)
	s.JSONEq(`{"type":"site","id":"0x2","index":"index.html"}`, out)

	out, err = s.run("decode", "-o", "yaml", "blob:abc")
	s.NoError(err)
	s.Equal("type: blob\nid: abc\n", out)

	_, err = s.run("decode", "{not json")
	s.Error(err)

	_, err = s.run("decode", "-o", "xml", "blob:abc")
	s.Error(err)
}

func (s *commandsSuite) TestUrl() {
	out, err := s.run("url", "--base", "https://agg/v1/", `{"type":"site","id":"s1"}`, "/docs/a b.html")
	s.NoError(err)
	s.Equal("https://agg/v1/sites/s1/docs/a%20b.html\n", out)

	out, err = s.run("url", "--base", "https://agg/v1", "blob:abc", "/ignored")
	s.NoError(err)
	s.Equal("https://agg/v1/blobs/abc\n", out)
}

func (s *commandsSuite) TestResolveRequiresName() {
	_, err := s.run("resolve", "--rpc", "http://127.0.0.1:1")
	s.Error(err)
}
