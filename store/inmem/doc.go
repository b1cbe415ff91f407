// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package inmem implements a store backend kept in process memory. Nothing is
persisted and nothing is shared with other processes, so it is meant for tests
and short lived runs that do not need a dedicated file or database.
*/
package inmem
