package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"perlscope/internal/config"
	"perlscope/internal/engine"
)

type testClient struct {
	t      *testing.T
	out    io.Writer
	in     *bufio.Reader
	nextID int
	done   chan error
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	eng, err := engine.New(config.Limits{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(eng.Close)

	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()
	srv := NewServer(eng, serverIn, serverOut)

	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		clientOut.CloseWithError(io.EOF)
		select {
		case err := <-done:
			done <- err
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &testClient{t: t, out: clientOut, in: bufio.NewReader(clientIn), done: done}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

// request sends a request and reads messages until its response,
// discarding interleaved notifications.
func (c *testClient) request(method string, params any) json.RawMessage {
	c.t.Helper()
	c.nextID++
	id := c.nextID
	c.write(map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params})
	for {
		msg := c.read()
		if len(msg.ID) == 0 {
			continue
		}
		var gotID int
		if err := json.Unmarshal(msg.ID, &gotID); err != nil || gotID != id {
			continue
		}
		if msg.Error != nil {
			c.t.Fatalf("%s: rpc error %d: %s", method, msg.Error.Code, msg.Error.Message)
		}
		return msg.Result
	}
}

// waitNotification reads until a notification with the method arrives.
func (c *testClient) waitNotification(method string) json.RawMessage {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Method == method {
			return msg.Params
		}
	}
}

func (c *testClient) write(msg any) {
	c.t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatal(err)
	}
	if err := writeMessage(c.out, payload); err != nil {
		c.t.Fatal(err)
	}
}

func (c *testClient) read() *rpcMessage {
	c.t.Helper()
	payload, err := readMessage(c.in)
	if err != nil {
		c.t.Fatalf("read message: %v", err)
	}
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.t.Fatalf("parse message: %v", err)
	}
	return &msg
}

func docParams(uri, text string) map[string]any {
	return map[string]any{
		"textDocument": map[string]any{
			"uri": uri, "languageId": "perl", "version": 1, "text": text,
		},
	}
}

func posParams(uri string, line, character int) map[string]any {
	return map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": line, "character": character},
	}
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	c := startServer(t)
	result := c.request("initialize", map[string]any{})
	var init initializeResult
	if err := json.Unmarshal(result, &init); err != nil {
		t.Fatal(err)
	}
	if !init.Capabilities.HoverProvider || !init.Capabilities.DefinitionProvider {
		t.Fatalf("missing providers in %+v", init.Capabilities)
	}
	if init.Capabilities.TextDocumentSync.Change != 2 {
		t.Fatal("expected incremental sync")
	}
}

func TestOpenPublishesDiagnosticsAndResolvesDefinition(t *testing.T) {
	c := startServer(t)
	c.request("initialize", map[string]any{})

	uri := "file:///tmp/a.pl"
	c.notify("textDocument/didOpen", docParams(uri, "my $x = 1;\nprint $x;\n"))

	var pub publishDiagnosticsParams
	if err := json.Unmarshal(c.waitNotification("textDocument/publishDiagnostics"), &pub); err != nil {
		t.Fatal(err)
	}
	if len(pub.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", pub.Diagnostics)
	}

	// $x use sits on line 1, character 6.
	result := c.request("textDocument/definition", posParams(uri, 1, 6))
	var loc lspLocation
	if err := json.Unmarshal(result, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Range.Start.Line != 0 || loc.Range.Start.Character != 3 {
		t.Fatalf("definition at %+v, want line 0 char 3", loc.Range.Start)
	}
}

func TestChangeUpdatesDiagnostics(t *testing.T) {
	c := startServer(t)
	c.request("initialize", map[string]any{})

	uri := "file:///tmp/b.pl"
	c.notify("textDocument/didOpen", docParams(uri, "my $x = 1;\n"))
	c.waitNotification("textDocument/publishDiagnostics")

	// Append a use of an undeclared variable.
	c.notify("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{
			"range": map[string]any{
				"start": map[string]any{"line": 1, "character": 0},
				"end":   map[string]any{"line": 1, "character": 0},
			},
			"text": "print $nope;\n",
		}},
	})

	var pub publishDiagnosticsParams
	if err := json.Unmarshal(c.waitNotification("textDocument/publishDiagnostics"), &pub); err != nil {
		t.Fatal(err)
	}
	if len(pub.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v, want one unresolved variable", pub.Diagnostics)
	}
	if pub.Diagnostics[0].Code != "sem-unresolved-variable" {
		t.Fatalf("code = %s", pub.Diagnostics[0].Code)
	}
}

func TestRenameRoundTrip(t *testing.T) {
	c := startServer(t)
	c.request("initialize", map[string]any{})

	uri := "file:///tmp/c.pl"
	c.notify("textDocument/didOpen", docParams(uri, "my $x = 1;\nprint $x;\n"))
	c.waitNotification("textDocument/publishDiagnostics")

	params := posParams(uri, 1, 6)
	params["newName"] = "count"
	result := c.request("textDocument/rename", params)
	var we workspaceEditResult
	if err := json.Unmarshal(result, &we); err != nil {
		t.Fatal(err)
	}
	edits := we.Changes[uri]
	if len(edits) != 2 {
		t.Fatalf("edits = %+v, want 2", edits)
	}
	for _, ed := range edits {
		if ed.NewText != "count" {
			t.Fatalf("new text = %q", ed.NewText)
		}
	}
}

func TestExitAfterShutdown(t *testing.T) {
	c := startServer(t)
	c.request("initialize", map[string]any{})
	c.request("shutdown", nil)
	c.notify("exit", nil)
	select {
	case err := <-c.done:
		c.done <- err
		if err != ErrExit {
			t.Fatalf("Run returned %v, want ErrExit", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not exit")
	}
}
