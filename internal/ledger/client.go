package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// QueryResult 只读调用结果
type QueryResult struct {
	Success bool          `json:"success"`
	Data    []interface{} `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ExecuteResult 状态变更调用结果
//
// Success=false 且 TransactionID 非空表示交易已送达但被账本拒绝，
// 与传输层失败（TransactionID 为空）区分开。
type ExecuteResult struct {
	Success       bool           `json:"success"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Receipt       *types.Receipt `json:"-"`
	Error         string         `json:"error,omitempty"`
}

// Client 账本客户端
//
// Execute 消耗账本资源且不可盲目重试：本客户端对状态变更调用
// 保证至多一次提交，重试决策交给调用方，且调用方重试前必须先查
// 账本状态确认未生效。Query 失败可安全重试。
type Client struct {
	mu         sync.RWMutex
	eth        *ethclient.Client
	privateKey *ecdsa.PrivateKey
	chainId    *big.Int
	defaultGas uint64
	timeout    time.Duration
	contracts  map[string]*Contract // 业务域 -> 合约引用
}

// Init 初始化账本客户端
func Init(cfg config.LedgerConfig) (*Client, error) {
	// 连接账本节点
	eth, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger node: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		eth:        eth,
		privateKey: privateKey,
		chainId:    big.NewInt(cfg.ChainId),
		defaultGas: cfg.DefaultGas,
		timeout:    timeout,
		contracts:  make(map[string]*Contract),
	}

	// 初始化所有启用的合约
	for name, contractCfg := range cfg.Contracts {
		if !contractCfg.Enabled {
			logger.Info("Skipping disabled contract: %s", name)
			continue
		}

		contract, err := NewContract(name, contractCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create contract %s: %w", name, err)
		}
		client.contracts[name] = contract
		logger.Info("Initialized contract %s (address: %s)", name, contractCfg.Address)
	}

	// 测试连接
	if _, err := client.CurrentBlock(); err != nil {
		eth.Close()
		return nil, fmt.Errorf("ledger connection test failed: %w", err)
	}

	logger.Info("Ledger client connected (network: %s, chain id: %d)", cfg.Network, cfg.ChainId)
	return client, nil
}

// Query 只读合约调用
func (c *Client) Query(contractName, function string, params []Param) QueryResult {
	contract, err := c.GetContract(contractName)
	if err != nil {
		return QueryResult{Success: false, Error: err.Error()}
	}

	values, err := abiValues(params)
	if err != nil {
		return QueryResult{Success: false, Error: err.Error()}
	}

	data, err := contract.abi.Pack(function, values...)
	if err != nil {
		return QueryResult{Success: false, Error: fmt.Sprintf("failed to pack call %s: %v", function, err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	addr := contract.GetAddress()
	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return QueryResult{Success: false, Error: fmt.Sprintf("query %s.%s failed: %v", contractName, function, err)}
	}

	out, err := contract.abi.Unpack(function, raw)
	if err != nil {
		return QueryResult{Success: false, Error: fmt.Sprintf("failed to unpack result of %s.%s: %v", contractName, function, err)}
	}

	return QueryResult{Success: true, Data: out}
}

// Execute 状态变更合约调用，等待回执确认
func (c *Client) Execute(contractName, function string, params []Param, gas uint64) ExecuteResult {
	contract, err := c.GetContract(contractName)
	if err != nil {
		return ExecuteResult{Success: false, Error: err.Error()}
	}

	values, err := abiValues(params)
	if err != nil {
		return ExecuteResult{Success: false, Error: err.Error()}
	}

	data, err := contract.abi.Pack(function, values...)
	if err != nil {
		return ExecuteResult{Success: false, Error: fmt.Sprintf("failed to pack call %s: %v", function, err)}
	}

	if gas == 0 {
		gas = c.defaultGas
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	from := c.AccountAddress()
	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return ExecuteResult{Success: false, Error: fmt.Sprintf("failed to get nonce: %v", err)}
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return ExecuteResult{Success: false, Error: fmt.Sprintf("failed to get gas price: %v", err)}
	}

	addr := contract.GetAddress()
	tx := types.NewTransaction(nonce, addr, big.NewInt(0), gas, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainId), c.privateKey)
	if err != nil {
		return ExecuteResult{Success: false, Error: fmt.Sprintf("failed to sign transaction: %v", err)}
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return ExecuteResult{Success: false, Error: fmt.Sprintf("failed to send transaction: %v", err)}
	}

	txId := signedTx.Hash().Hex()

	// 等待最终性回执
	receipt, err := c.waitReceipt(signedTx.Hash())
	if err != nil {
		return ExecuteResult{
			Success:       false,
			TransactionID: txId,
			Error:         fmt.Sprintf("failed waiting for receipt of %s: %v", txId, err),
		}
	}

	// 交易送达但账本拒绝执行
	if receipt.Status != types.ReceiptStatusSuccessful {
		return ExecuteResult{
			Success:       false,
			TransactionID: txId,
			Receipt:       receipt,
			Error:         fmt.Sprintf("ledger rejected transaction %s: receipt status %d", txId, receipt.Status),
		}
	}

	return ExecuteResult{Success: true, TransactionID: txId, Receipt: receipt}
}

// waitReceipt 轮询回执直到超时
func (c *Client) waitReceipt(txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetReceipt 获取交易回执
func (c *Client) GetReceipt(txId string) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.eth.TransactionReceipt(ctx, common.HexToHash(txId))
}

// GetBalance 获取账户余额
func (c *Client) GetBalance(address string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
}

// GetLogs 获取指定区块范围内的合约日志
func (c *Client) GetLogs(addresses []common.Address, fromBlock, toBlock int64) ([]types.Log, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: addresses,
	}
	return c.eth.FilterLogs(ctx, query)
}

// CurrentBlock 获取当前最新区块号
func (c *Client) CurrentBlock() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Int64(), nil
}

// GetContract 获取指定业务域合约
func (c *Client) GetContract(name string) (*Contract, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	contract, exists := c.contracts[name]
	if !exists {
		return nil, fmt.Errorf("contract %s not found", name)
	}
	return contract, nil
}

// GetContracts 获取所有已注册合约
func (c *Client) GetContracts() map[string]*Contract {
	c.mu.RLock()
	defer c.mu.RUnlock()

	contracts := make(map[string]*Contract, len(c.contracts))
	for name, contract := range c.contracts {
		contracts[name] = contract
	}
	return contracts
}

// AccountAddress 获取操作账户地址
func (c *Client) AccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// Close 关闭客户端
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
	logger.Info("Ledger client closed")
}
