package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Domenick1991/aeroluxe/config"
	bookingsapi "github.com/Domenick1991/aeroluxe/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/aeroluxe/internal/api/flights_service_api"
	"github.com/Domenick1991/aeroluxe/internal/api/rpc"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"github.com/Domenick1991/aeroluxe/internal/service/flights"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewGRPCServer registers both RPC services and the standard health service.
// Flight lookups and health checks are served without a token.
func NewGRPCServer(bookingSvc booking.BookingUseCase, flightSvc flights.FlightUseCase, provider identity.Provider, log *zap.Logger) *grpc.Server {
	public := append([]string{healthCheckMethod}, flightsapi.PublicMethods...)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		rpc.RecoveryInterceptor(log),
		rpc.LoggingInterceptor(log),
		rpc.AuthInterceptor(provider, public...),
	))

	bookingsapi.Register(srv, bookingsapi.NewServer(bookingSvc))
	flightsapi.Register(srv, flightsapi.NewServer(flightSvc))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(bookingsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(flightsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Run serves HTTP and gRPC until ctx is canceled or one of them fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, grpcSrv *grpc.Server, log *zap.Logger) error {
	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("grpc server started", zap.String("addr", cfg.GRPC.Address))
		errCh <- grpcSrv.Serve(lis)
	}()
	go func() {
		log.Info("http server started", zap.String("addr", cfg.HTTP.Address))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		grpcSrv.Stop()
		_ = httpSrv.Close()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		grpcSrv.Stop()
		return fmt.Errorf("shutdown http server: %w", err)
	}
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcSrv.Stop()
	}
	return nil
}
