// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package hangar

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/nerfZael/drone-sub001/lib/codec"
	"github.com/nerfZael/drone-sub001/lib/drone"
)

// dialTimeout is the maximum time to wait for a connection to the
// hangar socket. This is separate from the server's read/write
// timeouts; it covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for the server to
// send a response after writing the request. Matched to the server's
// readTimeout + writeTimeout to account for handler execution time.
const responseReadTimeout = 45 * time.Second

// maxResponseSize is the maximum size of a single CBOR response.
// Matches the server's maxRequestSize for symmetry.
const maxResponseSize = 1024 * 1024

// Client sends CBOR requests to a hangar service socket. Each call
// opens a new connection (matching the server's one-request-per-
// connection model), sends the request, reads the response, and closes
// the connection. Safe for concurrent use; calls share no state.
type Client struct {
	socketPath string
}

// NewClient creates a client for the hangar socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// CreateDrone asks the hangar to provision one drone. Name validation
// is synchronous; provisioning is not. The result reports phase
// "starting" and the drone appears in registry snapshots from there.
func (c *Client) CreateDrone(ctx context.Context, spec CreateSpec) (CreateResult, error) {
	var result CreateResult
	err := c.call(ctx, ActionCreateDrone, map[string]any{"spec": spec}, &result)
	return result, err
}

// CreateFleet submits a batch of creates. The call fails only on
// transport or whole-batch errors; per-spec rejections come back in
// FleetResult.Rejected with the accepted drones provisioning
// regardless.
func (c *Client) CreateFleet(ctx context.Context, specs []CreateSpec) (FleetResult, error) {
	var result FleetResult
	err := c.call(ctx, ActionCreateFleet, map[string]any{"specs": specs}, &result)
	return result, err
}

// SendPrompt delivers one prompt to a drone chat and returns the
// hangar-assigned prompt ID.
func (c *Client) SendPrompt(ctx context.Context, droneID, chat, text string) (string, error) {
	var receipt PromptReceipt
	err := c.call(ctx, ActionSendPrompt, map[string]any{
		"drone_id": droneID,
		"chat":     chat,
		"text":     text,
	}, &receipt)
	if err != nil {
		return "", err
	}
	return receipt.PromptID, nil
}

// RenameDrone changes a drone's display name. The registry reflects
// the new name on a later snapshot; until then records may still carry
// the old one.
func (c *Client) RenameDrone(ctx context.Context, droneID, newName string) (RenameResult, error) {
	var result RenameResult
	err := c.call(ctx, ActionRenameDrone, map[string]any{
		"drone_id": droneID,
		"new_name": newName,
	}, &result)
	return result, err
}

// DeleteDrone asks the hangar to tear a drone down. Success means the
// teardown was accepted; the drone disappears from registry snapshots
// once it is actually gone.
func (c *Client) DeleteDrone(ctx context.Context, droneID string) error {
	return c.call(ctx, ActionDeleteDrone, map[string]any{"drone_id": droneID}, nil)
}

// Snapshot fetches the registry's current drone list.
func (c *Client) Snapshot(ctx context.Context) (*drone.Snapshot, error) {
	var data SnapshotData
	if err := c.call(ctx, ActionSnapshot, nil, &data); err != nil {
		return nil, err
	}
	return drone.NewSnapshot(data.Drones), nil
}

// call sends a CBOR request to the hangar and decodes the response.
//
// The fields parameter may contain any action-specific request fields;
// call adds "action" automatically. Pass nil for actions that take no
// parameters.
//
// On success (response ok=true), if result is non-nil and the response
// contains data, the data is CBOR-decoded into result.
//
// On failure (response ok=false), returns a *HangarError built from
// the server's error string. Connection and encoding errors are
// returned as plain errors (not *HangarError).
func (c *Client) call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return fmt.Errorf("calling %q on %s: %w", action, c.socketPath, err)
	}

	if !response.OK {
		return parseWireError(action, response.Error)
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}

	return nil
}

// send connects to the socket, writes the request, and reads the
// response. Each call creates a new connection.
func (c *Client) send(ctx context.Context, request any) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	// Write the request.
	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	// Half-close the write side. CBOR is self-delimiting so this
	// isn't strictly necessary, but it lets the server's read side
	// see EOF cleanly.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	// Read the response.
	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &response, nil
}
