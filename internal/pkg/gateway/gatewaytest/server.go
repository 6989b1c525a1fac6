/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package gatewaytest provides an in-process peer gateway for tests. It
// decodes proposals sent by the gateway client, hands the invocation to a
// Handler, and answers with well-formed endorse, submit and commit status
// responses.
package gatewaytest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"sync"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	gp "github.com/hyperledger/fabric-protos-go-apiv2/gateway"
	"github.com/hyperledger/fabric-protos-go-apiv2/peer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// Invocation is a transaction function call received by the Server.
type Invocation struct {
	TransactionID string
	Channel       string
	Chaincode     string
	Function      string
	Args          []string
	// Submitted is true for endorsements, false for evaluations.
	Submitted bool
}

// Handler executes an invocation and returns the transaction result.
type Handler func(ctx context.Context, inv Invocation) ([]byte, error)

// Server is a fake implementation of the peer Gateway service.
type Server struct {
	gp.UnimplementedGatewayServer

	// Handler executes evaluations and endorsements.
	Handler Handler
	// SubmitErr, when set, is returned by Submit.
	SubmitErr error
	// CommitStatusErr, when set, is returned by CommitStatus.
	CommitStatusErr error
	// CommitCode is the validation code reported for submitted transactions.
	CommitCode peer.TxValidationCode

	// Address and MSPID are reported in error details.
	Address string
	MSPID   string
	// ClientCAs, when set, makes the server require TLS client certificates
	// signed by one of these PEM encoded CAs.
	ClientCAs [][]byte

	mutex       sync.Mutex
	invocations []Invocation
	submitted   map[string]bool
	blockNumber uint64
	grpcServer  *grpc.Server
	listener    net.Listener
}

// Start serves the gateway over TLS on a loopback port and returns the
// listening address.
func (s *Server) Start(cert tls.Certificate) (string, error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if len(s.ClientCAs) > 0 {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConfig.ClientCAs = x509.NewCertPool()
		for _, ca := range s.ClientCAs {
			if !tlsConfig.ClientCAs.AppendCertsFromPEM(ca) {
				lis.Close()
				return "", errors.New("failed to add client CA certificate")
			}
		}
	}

	s.grpcServer = grpc.NewServer(grpc.Creds(credentials.NewTLS(tlsConfig)))
	gp.RegisterGatewayServer(s.grpcServer, s)
	s.listener = lis
	if s.Address == "" {
		s.Address = lis.Addr().String()
	}

	go s.grpcServer.Serve(lis)
	return lis.Addr().String(), nil
}

// Stop stops the gRPC server.
func (s *Server) Stop() {
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
}

// Invocations returns the invocations received so far.
func (s *Server) Invocations() []Invocation {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Invocation(nil), s.invocations...)
}

// Submitted reports whether the transaction was sent for ordering.
func (s *Server) Submitted(txID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.submitted[txID]
}

func (s *Server) Evaluate(ctx context.Context, request *gp.EvaluateRequest) (*gp.EvaluateResponse, error) {
	inv, err := invocation(request.GetProposedTransaction())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "failed to unpack transaction proposal: %s", err)
	}

	payload, err := s.invoke(ctx, inv)
	if err != nil {
		return nil, s.rpcError(err, "evaluate call to endorser returned error")
	}

	return &gp.EvaluateResponse{
		Result: &peer.Response{Status: 200, Payload: payload},
	}, nil
}

func (s *Server) Endorse(ctx context.Context, request *gp.EndorseRequest) (*gp.EndorseResponse, error) {
	signedProposal := request.GetProposedTransaction()
	inv, err := invocation(signedProposal)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "failed to unpack transaction proposal: %s", err)
	}
	inv.Submitted = true

	payload, err := s.invoke(ctx, inv)
	if err != nil {
		return nil, s.rpcError(err, "failed to endorse transaction, see attached details for more info")
	}

	envelope, err := preparedTransaction(signedProposal, payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to assemble transaction: %s", err)
	}

	return &gp.EndorseResponse{PreparedTransaction: envelope}, nil
}

func (s *Server) Submit(ctx context.Context, request *gp.SubmitRequest) (*gp.SubmitResponse, error) {
	if s.SubmitErr != nil {
		return nil, s.rpcError(s.SubmitErr, "failed to send transaction to orderer")
	}
	if request.GetPreparedTransaction() == nil {
		return nil, status.Error(codes.InvalidArgument, "a signed prepared transaction is required")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.submitted == nil {
		s.submitted = map[string]bool{}
	}
	s.submitted[request.GetTransactionId()] = true
	return &gp.SubmitResponse{}, nil
}

func (s *Server) CommitStatus(ctx context.Context, signedRequest *gp.SignedCommitStatusRequest) (*gp.CommitStatusResponse, error) {
	if s.CommitStatusErr != nil {
		return nil, s.rpcError(s.CommitStatusErr, "failed to obtain commit status")
	}

	request := &gp.CommitStatusRequest{}
	if err := proto.Unmarshal(signedRequest.GetRequest(), request); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid status request: %v", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.submitted[request.GetTransactionId()] {
		return nil, status.Errorf(codes.NotFound, "transaction %s not found", request.GetTransactionId())
	}
	s.blockNumber++
	return &gp.CommitStatusResponse{
		Result:      s.CommitCode,
		BlockNumber: s.blockNumber,
	}, nil
}

func (s *Server) invoke(ctx context.Context, inv Invocation) ([]byte, error) {
	s.mutex.Lock()
	s.invocations = append(s.invocations, inv)
	s.mutex.Unlock()

	if s.Handler == nil {
		return nil, nil
	}
	return s.Handler(ctx, inv)
}

// rpcError passes gRPC status errors through unchanged and reports any other
// error as an Aborted status carrying the endpoint detail.
func (s *Server) rpcError(err error, message string) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	st := status.New(codes.Aborted, message)
	detailed, derr := st.WithDetails(&gp.ErrorDetail{
		Address: s.Address,
		MspId:   s.MSPID,
		Message: err.Error(),
	})
	if derr == nil {
		st = detailed
	}
	return st.Err()
}

func invocation(signedProposal *peer.SignedProposal) (Invocation, error) {
	if signedProposal == nil {
		return Invocation{}, errors.New("a signed proposal is required")
	}
	proposal := &peer.Proposal{}
	if err := proto.Unmarshal(signedProposal.GetProposalBytes(), proposal); err != nil {
		return Invocation{}, err
	}
	header := &common.Header{}
	if err := proto.Unmarshal(proposal.GetHeader(), header); err != nil {
		return Invocation{}, err
	}
	channelHeader := &common.ChannelHeader{}
	if err := proto.Unmarshal(header.GetChannelHeader(), channelHeader); err != nil {
		return Invocation{}, err
	}
	payload := &peer.ChaincodeProposalPayload{}
	if err := proto.Unmarshal(proposal.GetPayload(), payload); err != nil {
		return Invocation{}, err
	}
	spec := &peer.ChaincodeInvocationSpec{}
	if err := proto.Unmarshal(payload.GetInput(), spec); err != nil {
		return Invocation{}, err
	}

	args := spec.GetChaincodeSpec().GetInput().GetArgs()
	if len(args) == 0 {
		return Invocation{}, errors.New("no transaction function name")
	}
	inv := Invocation{
		TransactionID: channelHeader.GetTxId(),
		Channel:       channelHeader.GetChannelId(),
		Chaincode:     spec.GetChaincodeSpec().GetChaincodeId().GetName(),
		Function:      string(args[0]),
	}
	for _, arg := range args[1:] {
		inv.Args = append(inv.Args, string(arg))
	}
	return inv, nil
}

// preparedTransaction builds the unsigned transaction envelope for an
// endorsed proposal whose chaincode returned payload.
func preparedTransaction(signedProposal *peer.SignedProposal, payload []byte) (*common.Envelope, error) {
	proposal := &peer.Proposal{}
	if err := proto.Unmarshal(signedProposal.GetProposalBytes(), proposal); err != nil {
		return nil, err
	}

	chaincodeAction, err := proto.Marshal(&peer.ChaincodeAction{
		Response: &peer.Response{Status: 200, Payload: payload},
	})
	if err != nil {
		return nil, err
	}
	responsePayload, err := proto.Marshal(&peer.ProposalResponsePayload{
		Extension: chaincodeAction,
	})
	if err != nil {
		return nil, err
	}
	actionPayload, err := proto.Marshal(&peer.ChaincodeActionPayload{
		ChaincodeProposalPayload: proposal.GetPayload(),
		Action: &peer.ChaincodeEndorsedAction{
			ProposalResponsePayload: responsePayload,
		},
	})
	if err != nil {
		return nil, err
	}

	header := &common.Header{}
	if err := proto.Unmarshal(proposal.GetHeader(), header); err != nil {
		return nil, err
	}
	transaction, err := proto.Marshal(&peer.Transaction{
		Actions: []*peer.TransactionAction{{
			Header:  header.GetSignatureHeader(),
			Payload: actionPayload,
		}},
	})
	if err != nil {
		return nil, err
	}
	envelopePayload, err := proto.Marshal(&common.Payload{
		Header: header,
		Data:   transaction,
	})
	if err != nil {
		return nil, err
	}

	return &common.Envelope{Payload: envelopePayload}, nil
}
