package blocksource

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/ulogger"
	"github.com/kodemon/sats/util/retry"
	"github.com/ordishs/go-bitcoin"
	"github.com/ordishs/gocore"
)

const defaultRPCPort = 8332

var rpcStat = gocore.NewStat("blocksource_rpc")

// RPC reads blocks from a node over JSON-RPC.
type RPC struct {
	logger       ulogger.Logger
	client       *bitcoin.Bitcoind
	host         string
	retryCount   int
	retryBackoff time.Duration
}

func NewRPC(logger ulogger.Logger, tSettings *settings.Settings) (*RPC, error) {
	host, port, err := splitHostPort(tSettings.RPC.Host)
	if err != nil {
		return nil, err
	}

	client, err := bitcoin.New(host, port, tSettings.RPC.User, tSettings.RPC.Password, tSettings.RPC.UseSSL)
	if err != nil {
		return nil, errors.NewServiceError("could not create bitcoin RPC client for %s", tSettings.RPC.Host, err)
	}

	logger.Infof("[BlockSource] using node RPC at %s:%d", host, port)

	return &RPC{
		logger:       logger,
		client:       client,
		host:         tSettings.RPC.Host,
		retryCount:   5,
		retryBackoff: time.Second,
	}, nil
}

func splitHostPort(hostPort string) (string, int, error) {
	if hostPort == "" {
		return "", 0, errors.NewConfigurationError("rpc_host is not set")
	}

	if !strings.Contains(hostPort, ":") {
		return hostPort, defaultRPCPort, nil
	}

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", 0, errors.NewConfigurationError("invalid rpc_host %s", hostPort, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, errors.NewConfigurationError("invalid rpc port in %s", hostPort)
	}

	return host, port, nil
}

// wrapRPCError maps client errors onto coded errors so retries only cover transient failures.
func wrapRPCError(err error, message string, params ...interface{}) error {
	params = append(params, err)

	if errors.IsNetworkError(err) {
		return errors.NewNetworkError(message, params...)
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "out of range") || strings.Contains(lower, "not found") {
		return errors.NewBlockNotFoundError(message, params...)
	}

	if strings.Contains(lower, "loading block index") || strings.Contains(lower, "warming up") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "work queue depth") {
		return errors.NewServiceUnavailableError(message, params...)
	}

	return errors.NewServiceError(message, params...)
}

func (r *RPC) retryOptions(message string) []retry.Option {
	return []retry.Option{
		retry.WithRetryCount(r.retryCount),
		retry.WithBackoffDurationType(r.retryBackoff),
		retry.WithExponentialBackoff(),
		retry.WithMessage(message),
		retry.WithRetryIf(errors.IsRetryableError),
	}
}

func (r *RPC) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "", nil
	}

	info, err := r.client.GetBlockchainInfo()
	if err != nil {
		return http.StatusServiceUnavailable, "node RPC at " + r.host + " unreachable", wrapRPCError(err, "[BlockSource][Health] getblockchaininfo failed")
	}

	return http.StatusOK, "node RPC at " + r.host + " best block " + info.BestBlockHash, nil
}

func (r *RPC) GetChainHeight(ctx context.Context) (uint64, error) {
	start := gocore.CurrentTime()
	defer rpcStat.NewStat("GetChainHeight").AddTime(start)

	return retry.Retry(ctx, r.logger, func() (uint64, error) {
		info, err := r.client.GetBlockchainInfo()
		if err != nil {
			return 0, wrapRPCError(err, "[BlockSource][GetChainHeight] getblockchaininfo failed")
		}

		return uint64(info.Blocks), nil
	}, r.retryOptions("getblockchaininfo")...)
}

func (r *RPC) GetBlock(ctx context.Context, height uint64) (*model.Block, error) {
	start := gocore.CurrentTime()
	defer rpcStat.NewStat("GetBlock").AddTime(start)

	hash, err := retry.Retry(ctx, r.logger, func() (string, error) {
		h, err := r.client.GetBlockHash(int(height))
		if err != nil {
			return "", wrapRPCError(err, "[BlockSource][GetBlock][%d] getblockhash failed", height)
		}

		return h, nil
	}, r.retryOptions("getblockhash")...)
	if err != nil {
		return nil, err
	}

	raw, err := retry.Retry(ctx, r.logger, func() ([]byte, error) {
		b, err := r.client.GetRawBlock(hash)
		if err != nil {
			return nil, wrapRPCError(err, "[BlockSource][GetBlock][%d] getblock %s failed", height, hash)
		}

		return b, nil
	}, r.retryOptions("getblock")...)
	if err != nil {
		return nil, err
	}

	block, err := model.NewBlockFromBytes(raw, height)
	if err != nil {
		return nil, errors.NewBlockInvalidError("[BlockSource][GetBlock][%d] failed to parse block %s", height, hash, err)
	}

	if block.Hash().String() != hash {
		return nil, errors.NewBlockInvalidError("[BlockSource][GetBlock][%d] node returned block %s, expected %s", height, block.Hash(), hash)
	}

	return block, nil
}
