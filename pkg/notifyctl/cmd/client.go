// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/telekom/notification-service/pkg/notifyctl/client"
	"github.com/telekom/notification-service/pkg/version"
)

func buildClient(rt *runtimeState) (*client.Client, error) {
	ctxCfg, err := rt.ResolveContext()
	if err != nil {
		return nil, err
	}
	server := rt.serverOverride
	if server == "" && ctxCfg != nil {
		server = ctxCfg.Server
	}
	if server == "" {
		return nil, errors.New("server is required; pass --server or run 'notifyctl config set-context'")
	}

	token, err := resolveToken(rt, ctxCfg != nil && rt.serverOverride == "")
	if err != nil {
		return nil, err
	}

	options := []client.Option{
		client.WithServer(server),
		client.WithToken(token),
		client.WithUserAgent(version.UserAgent("notifyctl")),
	}
	if rt.cfg != nil && rt.cfg.Settings.Timeout != "" {
		if timeout, parseErr := time.ParseDuration(rt.cfg.Settings.Timeout); parseErr == nil {
			options = append(options, client.WithTimeout(timeout))
		}
	}
	if ctxCfg != nil && rt.serverOverride == "" {
		options = append(options, client.WithTLSConfig(ctxCfg.CAFile, ctxCfg.InsecureSkipTLSVerify))
	}
	// stderr keeps JSON output on stdout parseable
	if rt.verbose {
		options = append(options, client.WithVerbose(func(format string, args ...any) {
			_, _ = fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
		}))
	}
	return client.New(options...)
}

// resolveToken prefers --token, then the keyring entry of the active context.
func resolveToken(rt *runtimeState, haveContext bool) (string, error) {
	if rt.tokenOverride != "" {
		return rt.tokenOverride, nil
	}
	if !haveContext {
		return "", nil
	}
	token, ok, err := rt.tokens.Load(rt.ResolveContextName())
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("not authenticated; run 'notifyctl login'")
	}
	return token, nil
}
