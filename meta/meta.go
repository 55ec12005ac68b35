// meta/meta.go
package meta

// DEFAULT_TCP_ADDR is where the server accepts TCP clients.
const DEFAULT_TCP_ADDR = "0.0.0.0:2321"

// DEFAULT_UNIX_PATH is the Unix socket the server listens on.
const DEFAULT_UNIX_PATH = "/tmp/rainet.sock"

// DEFAULT_WS_ADDR serves the websocket endpoint. Empty disables it.
const DEFAULT_WS_ADDR = ""

// MAX_ROOMS caps the number of open rooms.
const MAX_ROOMS = 64

// MAX_LINE_LENGTH bounds one protocol line in bytes.
const MAX_LINE_LENGTH = 64 * 1024

// UPDATE_BUFFER is the per-subscriber backlog of match updates.
const UPDATE_BUFFER = 16
