/*
Package domain contains the core models of the Stepwise login flow engine.

It defines what the user has entered, which screen should be shown for it, and
how in-flight status travels alongside a screen. This package is kept pure and
free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - FilledData: Immutable snapshot of user input (flow type, email, password, age check, terms, user ID).
  - Step: Closed set of screens (Start, ChooseFlow, EnterEmail, EnterPassword, VerifyMinAge, ConfirmTerms, Done), each with a NavID.
  - Outcome: Status-tagged payload (Loading, Success, Error) with a status-preserving Map.
  - UIState: One emission of the combined status+step stream, ordered by Seq.
*/
package domain
