package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sharkfunded/platform/internal/pkg/cache"
	"github.com/sharkfunded/platform/internal/pkg/database"
)

const (
	webhookReceivedKey  = "webhook:counters:received"
	webhookProcessedKey = "webhook:counters:processed"
)

// AddWebhookReceived increments the pending received counter for a gateway in Redis
func AddWebhookReceived(gatewayName string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookReceivedKey, gatewayName, 1).Err()
}

// AddWebhookProcessed increments the pending processed counter for a gateway in Redis
func AddWebhookProcessed(gatewayName string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookProcessedKey, gatewayName, 1).Err()
}

// FlushAll flushes both webhook counters to the database
func FlushAll() error {
	if err := flushHashToStats(webhookReceivedKey, "received_count"); err != nil {
		return err
	}
	if err := flushHashToStats(webhookProcessedKey, "processed_count"); err != nil {
		return err
	}
	return nil
}

// flushHashToStats drains a Redis hash atomically and applies batched
// increments to the gateway_stats table. Uses RENAME to a temporary key for
// atomic drain without losing in-flight increments.
func flushHashToStats(redisKey, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	db := database.GetDB()
	for _, name := range names {
		inc, perr := strconv.ParseInt(data[name], 10, 64)
		if perr != nil || inc == 0 {
			continue
		}
		// Upsert keeps the stats row alive for gateways added at runtime.
		sql := fmt.Sprintf(
			"INSERT INTO gateway_stats (gateway, %s, created_at, updated_at) VALUES (?, ?, NOW(), NOW()) "+
				"ON DUPLICATE KEY UPDATE %s = %s + VALUES(%s), updated_at = NOW()",
			column, column, column, column)
		if err := db.Exec(sql, name, inc).Error; err != nil {
			return err
		}
	}
	return nil
}
