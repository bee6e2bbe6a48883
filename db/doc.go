/*
Package db contains tools for working safely with MySQL.

Every statement and every commit issued through a Querier or the TxManager has its driver
error translated with Translate, so callers see a *mysqlerr.Error for the codes that
mysqlerr recognises and the original driver error for everything else.

There are tools for:
- transactions (including rollbacks on error or panic)
- replaying a whole transaction on lock contention (WithRetryTransaction)
- observability (both for queries and connection info)
- health checks
*/
package db
