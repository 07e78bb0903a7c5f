// Package domain contains the business entities of the garden API: accounts
// with their verification and reset token lifecycle, and catalog cards. The
// types here are plain records with validation and state-transition helpers;
// they know nothing about storage or transport.
package domain
