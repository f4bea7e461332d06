package headless

// RPCMethod is a Delve JSON-RPC method name
type RPCMethod string

// Documentation: https://pkg.go.dev/github.com/go-delve/delve/service/rpc2
const (
	RPCGetVersion      RPCMethod = "RPCServer.GetVersion"
	RPCListBreakpoints RPCMethod = "RPCServer.ListBreakpoints" // https://pkg.go.dev/github.com/go-delve/delve/service/rpc2#RPCServer.ListBreakpoints
)
