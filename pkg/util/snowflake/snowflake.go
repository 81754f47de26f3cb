package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init 初始化雪花算法节点，应在程序启动时调用一次
// 多副本部署时每个实例的 machineID 必须唯一，否则交易流水号可能重复
func Init(machineID int64) {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("Invalid MachineID in config, using default value 1", zap.Int64("machineID", machineID))
			machineID = 1
		}
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("Failed to initialize snowflake node", zap.Error(err))
		}
		zap.L().Info("Snowflake node initialized", zap.Int64("machineID", machineID))
	})
}

// GenerateIDString 生成雪花 ID 字符串
func GenerateIDString() string {
	if node == nil {
		Init(1)
	}
	return node.Generate().String()
}

// TxRef 生成缴款幂等键，每次发起缴款都不同
func TxRef() string {
	return "tx-" + GenerateIDString()
}

// TransferRef 生成放款转账流水号
func TransferRef() string {
	return "payout-" + GenerateIDString()
}
