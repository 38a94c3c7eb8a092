package platform

import (
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of the Platform interface.
type MockPlatform struct {
	mock.Mock
}

var _ Platform = (*MockPlatform)(nil)

func (m *MockPlatform) LinkIndexByName(name string) (int, error) {
	args := m.Called(name)
	return args.Int(0), args.Error(1)
}

func (m *MockPlatform) LinkName(ifindex int) (string, error) {
	args := m.Called(ifindex)
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) LinkGetMaster(ifindex int) int {
	args := m.Called(ifindex)
	return args.Int(0)
}

func (m *MockPlatform) LinkGetMTU(ifindex int) int {
	args := m.Called(ifindex)
	return args.Int(0)
}

func (m *MockPlatform) LinkSetMTU(ifindex, mtu int) error {
	args := m.Called(ifindex, mtu)
	return args.Error(0)
}

func (m *MockPlatform) LinkSetUp(ifindex int) error {
	args := m.Called(ifindex)
	return args.Error(0)
}

func (m *MockPlatform) LinkSetDown(ifindex int) error {
	args := m.Called(ifindex)
	return args.Error(0)
}

func (m *MockPlatform) LinkSupportsCarrierDetect(ifindex int) bool {
	args := m.Called(ifindex)
	return args.Bool(0)
}

func (m *MockPlatform) AddressGetAll(ifindex int) []Address {
	args := m.Called(ifindex)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]Address)
}

func (m *MockPlatform) AddressSync(ifindex int, known []Address, defaultRouteMetric uint32) bool {
	args := m.Called(ifindex, known, defaultRouteMetric)
	return args.Bool(0)
}

func (m *MockPlatform) RouteGetAll(ifindex int, mode RouteMode) []Route {
	args := m.Called(ifindex, mode)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]Route)
}

func (m *MockPlatform) RouteAdd(ifindex int, route Route) bool {
	args := m.Called(ifindex, route)
	return args.Bool(0)
}

func (m *MockPlatform) RouteSync(ifindex int, routes []Route) bool {
	args := m.Called(ifindex, routes)
	return args.Bool(0)
}
