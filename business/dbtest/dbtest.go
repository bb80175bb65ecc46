// Package dbtest provides helpers to set up a throwaway database for testing.
package dbtest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"
	"time"

	"github.com/orielmalik/people-directory/business/database/postgres"
	"github.com/orielmalik/people-directory/foundation/docker"
)

// NewDatabaseClient starts a postgres container, creates a random database
// inside it, migrates the schema and returns a ready client. Everything is
// cleaned up when the test finishes.
func NewDatabaseClient(t *testing.T, name string) *postgres.Client {
	image := "postgres:latest"
	port := "5432"
	dockerArgs := []string{"-e", "POSTGRES_PASSWORD=password"}
	appArgs := []string{"-c", "log_statement=all"}

	c, err := docker.StartContainer(image, name, port, dockerArgs, appArgs)
	if err != nil {
		t.Fatalf("failed to start container with image %q: %s", image, err)
	}

	t.Logf("Name/ID:  %s", c.Id)
	t.Logf("Host:Port  %s", c.HostPort)

	//connect as the main user first
	masterClient, err := postgres.NewClient(postgres.Config{
		User:       "postgres",
		Password:   "password",
		Host:       c.HostPort,
		Name:       "postgres",
		DisableTLS: true,
	})
	if err != nil {
		t.Fatalf("failed to create master db client: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*5)
	defer cancel()

	if err := masterClient.StatusCheck(ctx); err != nil {
		t.Fatalf("status check failed: %s", err)
	}

	//a random database per test so parallel tests never collide
	bs := make([]byte, 8)
	if _, err := rand.Read(bs); err != nil {
		t.Fatalf("generating random database name: %s", err)
	}
	dbName := "a" + hex.EncodeToString(bs)

	if _, err := masterClient.DB.ExecContext(context.Background(), "CREATE DATABASE "+dbName); err != nil {
		t.Fatalf("failed to create database %q: %s", dbName, err)
	}

	client, err := postgres.NewClient(postgres.Config{
		User:       "postgres",
		Password:   "password",
		Host:       c.HostPort,
		Name:       dbName,
		DisableTLS: true,
	})
	if err != nil {
		t.Fatalf("failed to create a client: %s", err)
	}

	t.Logf("connected to the database %s", dbName)

	ctx, cancel = context.WithTimeout(context.Background(), time.Minute*5)
	defer cancel()

	if err := client.StatusCheck(ctx); err != nil {
		t.Fatalf("status check failed against test client: %s", err)
	}

	t.Logf("running migration against %q database", dbName)
	if err := client.Migrate(); err != nil {
		t.Fatalf("failed to run migrations: %s", err)
	}

	t.Cleanup(func() {
		if err := client.DB.Close(); err != nil {
			t.Fatalf("failed to close client connection: %s", err)
		}

		//terminate all conns to that database otherwise it can not be dropped
		const q = `
		SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname=$1;
		`
		if _, err := masterClient.DB.ExecContext(context.Background(), q, dbName); err != nil {
			t.Fatalf("failed to remove all connections to db %q", dbName)
		}

		if _, err := masterClient.DB.ExecContext(context.Background(), "DROP DATABASE "+dbName); err != nil {
			t.Fatalf("failed to delete database %s: %s", dbName, err)
		}

		_ = masterClient.DB.Close()

		if err := c.Stop(); err != nil {
			t.Logf("failed to stop container %s: %s", c.Id, err)
		}
		t.Logf("removed the container successfully %s", c.Id)
	})

	return client
}
