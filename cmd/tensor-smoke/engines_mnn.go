//go:build mnn

package main

import _ "github.com/justinsb/mnntensor/pkg/engine/mnn"
