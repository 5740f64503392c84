package monitor

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/syncer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
)

// 区块批量大小与轮询间隔
const (
	blockBatchSize = int64(500)
	pollInterval   = time.Second * 60
	batchPause     = time.Millisecond * 500
)

// EventMonitor 合约事件监控器
//
// 在两次定时同步之间近实时刷新投影：监听各业务域合约的事件日志，
// 对事件涉及的活动触发单活动同步。
type EventMonitor struct {
	client        *ledger.Client
	orchestrator  *syncer.Orchestrator
	startBlockNum int64
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex // 保护 startBlockNum 的并发访问
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(client *ledger.Client, orchestrator *syncer.Orchestrator) *EventMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventMonitor{
		client:       client,
		orchestrator: orchestrator,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	logger.Info("Starting ledger event monitor")

	contracts := m.client.GetContracts()
	if len(contracts) == 0 {
		logger.Warn("No contracts available for monitoring, event monitor disabled")
		return nil
	}

	currentBlock, err := m.client.CurrentBlock()
	if err != nil {
		return err
	}

	// 从各合约部署区块的最小值与当前区块中取合理起点
	startBlock := currentBlock
	for _, contract := range contracts {
		if contract.GetBlockNum() > 0 && contract.GetBlockNum() < startBlock {
			startBlock = contract.GetBlockNum()
		}
	}

	m.mu.Lock()
	m.startBlockNum = startBlock
	m.mu.Unlock()

	logger.Info("Event monitor starting from block %d (current: %d)", startBlock, currentBlock)

	go m.loop()
	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	logger.Info("Stopping ledger event monitor")
	m.cancel()
}

// loop 监控循环
func (m *EventMonitor) loop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Event monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.client.CurrentBlock()
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				continue
			}

			m.mu.RLock()
			fromBlock := m.startBlockNum
			m.mu.RUnlock()

			if fromBlock > currentBlock {
				continue
			}

			if err := m.processBlocksInBatches(fromBlock, currentBlock); err != nil {
				logger.Error("Error processing blocks %d-%d: %v", fromBlock, currentBlock, err)
			}
		}
	}
}

// processBlocksInBatches 分批处理区块
func (m *EventMonitor) processBlocksInBatches(fromBlock, toBlock int64) error {
	cursor, err := walkBlockRange(fromBlock, toBlock, blockBatchSize, batchPause, m.processBatch)

	if cursor > fromBlock {
		m.mu.Lock()
		m.startBlockNum = cursor
		m.mu.Unlock()
	}

	return err
}

// walkBlockRange 逐批处理区块区间，返回游标的新位置
//
// 游标只越过连续成功的批次：某批失败立即停止，失败及其后的区间
// 留在游标之后，下一轮从失败处重试，不会越过失败批次丢事件。
func walkBlockRange(fromBlock, toBlock, batchSize int64, pause time.Duration, process func(from, to int64) error) (int64, error) {
	cursor := fromBlock
	for currentFrom := fromBlock; currentFrom <= toBlock; currentFrom += batchSize {
		currentTo := currentFrom + batchSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		if err := process(currentFrom, currentTo); err != nil {
			return cursor, fmt.Errorf("blocks %d-%d: %w", currentFrom, currentTo, err)
		}
		cursor = currentTo + 1

		// 批次间延迟，避免节点限流
		if currentTo < toBlock && pause > 0 {
			time.Sleep(pause)
		}
	}
	return cursor, nil
}

// processBatch 处理一批区块的日志
func (m *EventMonitor) processBatch(fromBlock, toBlock int64) error {
	contracts := m.client.GetContracts()

	var addresses []common.Address
	contractMap := make(map[common.Address]*ledger.Contract)
	for _, contract := range contracts {
		addresses = append(addresses, contract.GetAddress())
		contractMap[contract.GetAddress()] = contract
	}

	logs, err := m.client.GetLogs(addresses, fromBlock, toBlock)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs for blocks %d-%d", len(logs), fromBlock, toBlock)

	// 按合约地址分组日志
	logsByContract := make(map[common.Address][]types.Log)
	for _, log := range logs {
		logsByContract[log.Address] = append(logsByContract[log.Address], log)
	}

	// 临时协程池并发处理每个合约的日志组，收集涉及的活动ID
	var touchedMu sync.Mutex
	touched := make(map[int64]struct{})

	pool, err := ants.NewPool(len(logsByContract))
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for address, contractLogs := range logsByContract {
		contract := contractMap[address]
		if contract == nil {
			logger.Warn("Unknown contract address: %s", address.Hex())
			continue
		}

		address, contractLogs := address, contractLogs
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			ids := m.extractCampaignIds(contractMap[address], contractLogs)
			touchedMu.Lock()
			for id := range ids {
				touched[id] = struct{}{}
			}
			touchedMu.Unlock()
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit task to pool: %v", err)
		}
	}
	wg.Wait()

	// 对事件涉及的活动逐个刷新投影
	for campaignId := range touched {
		if err := m.orchestrator.SyncSingleCampaign(campaignId); err != nil {
			logger.Error("Failed to refresh campaign %d after event: %v", campaignId, err)
		}
	}

	return nil
}

// extractCampaignIds 从日志组中提取涉及的活动ID
func (m *EventMonitor) extractCampaignIds(contract *ledger.Contract, logs []types.Log) map[int64]struct{} {
	ids := make(map[int64]struct{})

	for _, log := range logs {
		eventData, err := contract.ParseEvent(log)
		if err != nil {
			logger.Error("Error parsing event for contract %s: %v", contract.GetName(), err)
			continue
		}

		raw, ok := eventData["campaignId"]
		if !ok {
			continue
		}

		switch v := raw.(type) {
		case *big.Int:
			ids[v.Int64()] = struct{}{}
		case int64:
			ids[v] = struct{}{}
		case uint64:
			ids[int64(v)] = struct{}{}
		}
	}

	return ids
}
