// Package ens resolves wallet addresses to ENS display names, best-effort.
// A failed or disabled lookup yields nil, never an error: display names are
// decoration and must not block any write.
package ens

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/readproof-dev/readproof/internal/domain"
)

// Mainnet ENS registry.
const registryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// 4-byte selectors for registry.resolver(bytes32) and resolver.name(bytes32).
const (
	resolverSelector = "0x0178b8bf"
	nameSelector     = "0x691f3431"
)

const cacheSize = 1024

type Resolver struct {
	client *resty.Client
	cache  *expirable.LRU[string, string]
}

// New builds a resolver against an Ethereum JSON-RPC endpoint. An empty
// rpcURL returns a disabled resolver whose Lookup always yields nil; callers
// never need to special-case missing configuration.
func New(rpcURL string, cacheTTL time.Duration) *Resolver {
	if rpcURL == "" {
		slog.Warn("eth rpc url not configured, ens resolution disabled")
		return &Resolver{}
	}
	client := resty.New().
		SetBaseURL(rpcURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(1)
	return &Resolver{
		client: client,
		cache:  expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
	}
}

// Lookup returns the ENS name for addr, or nil when there is none or the
// lookup fails. Results, including misses, are cached.
func (r *Resolver) Lookup(ctx context.Context, addr domain.Address) *string {
	if r.client == nil {
		return nil
	}
	addr = domain.NormalizeAddress(addr)

	if name, ok := r.cache.Get(addr); ok {
		return asOptional(name)
	}

	name, err := r.resolve(ctx, addr)
	if err != nil {
		slog.Debug("ens resolution failed", "address", addr, "err", err)
		return nil
	}
	r.cache.Add(addr, name)
	return asOptional(name)
}

func (r *Resolver) resolve(ctx context.Context, addr domain.Address) (string, error) {
	// Reverse record node: namehash("<addr-hex>.addr.reverse").
	node := namehash(strings.TrimPrefix(addr, "0x") + ".addr.reverse")

	resolverAddr, err := r.ethCall(ctx, registryAddress, resolverSelector+hex.EncodeToString(node[:]))
	if err != nil {
		return "", err
	}
	resolver := wordToAddress(resolverAddr)
	if resolver == "" {
		return "", nil // no reverse record
	}

	encoded, err := r.ethCall(ctx, resolver, nameSelector+hex.EncodeToString(node[:]))
	if err != nil {
		return "", err
	}
	return decodeString(encoded)
}

type rpcRequest struct {
	JsonRpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	Id      int    `json:"id"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ethCall issues eth_call against to with calldata (hex without 0x prefix for
// the argument part) and returns the raw result bytes.
func (r *Resolver) ethCall(ctx context.Context, to, data string) ([]byte, error) {
	var out rpcResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(rpcRequest{
			JsonRpc: "2.0",
			Method:  "eth_call",
			Params:  []any{map[string]string{"to": to, "data": data}, "latest"},
			Id:      1,
		}).
		SetResult(&out).
		Post("")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("eth_call http status %d", resp.StatusCode())
	}
	if out.Error != nil {
		return nil, fmt.Errorf("eth_call rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	return hex.DecodeString(strings.TrimPrefix(out.Result, "0x"))
}

// namehash implements the ENS recursive label hash (EIP-137).
func namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		copy(node[:], crypto.Keccak256(node[:], labelHash))
	}
	return node
}

// wordToAddress decodes a 32-byte ABI word holding an address, returning ""
// for the zero address.
func wordToAddress(word []byte) string {
	if len(word) != 32 {
		return ""
	}
	addr := word[12:]
	zero := true
	for _, b := range addr {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return ""
	}
	return "0x" + hex.EncodeToString(addr)
}

// decodeString decodes a single ABI-encoded string return value.
func decodeString(data []byte) (string, error) {
	if len(data) < 64 {
		return "", nil
	}
	// offset word, then length word, then bytes
	length := int(data[63]) | int(data[62])<<8 | int(data[61])<<16 | int(data[60])<<24
	if length == 0 {
		return "", nil
	}
	if 64+length > len(data) {
		return "", fmt.Errorf("ens name length %d exceeds payload", length)
	}
	return string(data[64 : 64+length]), nil
}

func asOptional(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
