// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package slip

import "nickandperla.net/slip/internal/stdlib"

// DefaultPrelude contains the standard definitions that are automatically
// loaded unless -no-stdlib is specified.
var DefaultPrelude = stdlib.Prelude

// preludeKey is the store metadata key whose value, when set, replaces the
// default prelude.
const preludeKey = "prelude"
